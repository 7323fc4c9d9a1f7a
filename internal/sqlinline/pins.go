package sqlinline

const QInsertPin = `--sql 704c5306-6413-436f-a89d-ce4dc242eab7
insert into pins (id, product_id, product_title, caption, image, link, category, board_name, scheduled_for, status, created_at)
values ($1::uuid, $2::text, $3::text, $4::text, $5::text, $6::text, $7::text, $8::text, $9::timestamptz, $10::text, $11::timestamptz);
`

const QClaimDuePins = `--sql 77c233ff-7405-454f-92ee-e7a7f68a08f2
with due as (
    select id
    from pins
    where status = 'queued' and scheduled_for <= $1::timestamptz
    order by scheduled_for asc, created_at asc
    for update skip locked
    limit $2::int
),
claimed as (
    update pins
    set status = 'publishing'
    where id in (select id from due)
    returning id::text, product_id, product_title, caption, image, link, category, board_name,
        scheduled_for, status, remote_pin_id, pin_url, error, created_at, published_at
)
select * from claimed;
`

const QMarkPinPublished = `--sql ad687618-b11b-4fd5-b0eb-50419e3878c5
update pins
set status = 'published', remote_pin_id = $2::text, pin_url = $3::text, error = '', published_at = $4::timestamptz
where id = $1::uuid;
`

const QMarkPinFailed = `--sql 103e2406-3f9b-4813-b81e-e5c1e17150ff
update pins
set status = 'failed', error = $2::text
where id = $1::uuid;
`

const QRequeuePin = `--sql a8c791a7-bde4-4527-9830-8522db945408
update pins
set status = 'queued', error = ''
where id = $1::uuid and status = 'publishing';
`

const QSelectPin = `--sql f90694df-1edc-4da0-ae69-b2121a456c66
select id::text, product_id, product_title, caption, image, link, category, board_name,
    scheduled_for, status, remote_pin_id, pin_url, error, created_at, published_at
from pins
where id = $1::uuid;
`

const QListPins = `--sql 19e6cce8-62aa-4e42-8ae0-f58e83cf1d0b
select id::text, product_id, product_title, caption, image, link, category, board_name,
    scheduled_for, status, remote_pin_id, pin_url, error, created_at, published_at
from pins
where ($1::text = '' or status = $1::text)
order by created_at desc, id
limit nullif($2::int, 0);
`
