package sqlinline

// Provider keys are lower-case ("pinterest"); properties hold provider
// specific settings such as board_id.

const QSelectIntegrationToken = `--sql 72e708a4-215b-42d8-ac59-ef48bfa26fff
select t.token, coalesce(t.properties ->> 'board_id', '')
from integration_tokens t
where t.provider = $1::text;
`

const QUpsertIntegrationToken = `--sql 578aba54-edfc-4ae9-9829-d68ea1523489
insert into integration_tokens as t (id, provider, token, properties)
values (gen_random_uuid(), $1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb))
on conflict (provider) do update
set token = excluded.token,
    properties = t.properties || excluded.properties,
    updated_at = now();
`
