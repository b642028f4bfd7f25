package sqlinline

// QListDonationHistory feeds the forecast pipeline. Nullable columns are
// passed through so the feature builder applies its own defaults.
const QListDonationHistory = `--sql 7a08e4f6-cb8a-42c4-bd7f-291d6e913edc
select
  created_at,
  amount_int::float8 as amount,
  coalesce(properties->>'donationType', properties->>'donation_type') as donation_type
from donations
order by created_at asc;
`
