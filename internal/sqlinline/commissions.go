package sqlinline

const QInsertCommission = `--sql 6c8222a9-9141-4098-8e9a-9e9cb25bcf43
insert into commissions (id, order_id, amount, product_asin, earned_at, status, withdrawn_at, meals, created_at)
values ($1::uuid, $2::text, $3::numeric, nullif($4::text, ''), $5::timestamptz, $6::text, $7::timestamptz, $8::bigint, $9::timestamptz);
`

const QListCommissions = `--sql d6d6a6fd-bd02-4f86-ac08-5ba72e1c54a9
select id::text, order_id, amount::text, product_asin, earned_at, status, withdrawn_at, meals, created_at
from commissions
where ($1::text = '' or status = $1::text)
order by created_at desc, id
limit nullif($2::int, 0);
`
