package sqlinline

const QEnsureLedger = `--sql 2bd888ed-9690-43fd-8dcc-86db3448a4e5
insert into ledger (id, total_raised, meals_provided, pets_helped, purchases_made, monthly_raised, monthly_goal, last_updated)
values (1, $1::numeric, $2::bigint, $3::bigint, $4::bigint, $5::numeric, $6::numeric, $7::timestamptz)
on conflict (id) do nothing
returning id;
`

const QSelectLedger = `--sql b137a9c2-a8bd-4366-986a-5249562b463a
select total_raised::text, meals_provided, pets_helped, purchases_made, monthly_raised::text, monthly_goal::text, last_updated
from ledger
where id = 1;
`

const QSelectLedgerForUpdate = `--sql 54596108-be8c-414e-8d3c-4ad9db923eeb
select total_raised::text, meals_provided, pets_helped, purchases_made, monthly_raised::text, monthly_goal::text, last_updated
from ledger
where id = 1
for update;
`

const QUpdateLedger = `--sql 06ff8976-c94b-4c75-9609-cc649c7b9ec3
update ledger
set total_raised = $1::numeric,
    meals_provided = $2::bigint,
    pets_helped = $3::bigint,
    purchases_made = $4::bigint,
    monthly_raised = $5::numeric,
    monthly_goal = $6::numeric,
    last_updated = $7::timestamptz
where id = 1;
`

const QInsertReceipt = `--sql 1287af1a-a56c-454c-a07b-771f22cde848
insert into receipts (id, purchased_at, amount, items, supplier, meals, receipt_image, verified)
values ($1::uuid, $2::timestamptz, $3::numeric, $4::text, $5::text, $6::bigint, nullif($7::text, ''), $8::boolean);
`

const QListReceipts = `--sql 370ff960-8006-4986-91a1-5d40f1d36111
select id::text, purchased_at, amount::text, items, supplier, meals, receipt_image, verified
from receipts
order by seq desc;
`
