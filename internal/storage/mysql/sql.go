package mysql

// Upserts keyed on the external identity. Curated columns (category,
// is_active) are still written here: the merge policy in the app layer
// decides their values before the row reaches SQL.
const upsertPropertySQL = `
INSERT INTO properties
  (property_id, title, summary, details, category, is_active, last_sync, raw_upstream)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  title        = VALUES(title),
  summary      = VALUES(summary),
  details      = VALUES(details),
  category     = VALUES(category),
  is_active    = VALUES(is_active),
  last_sync    = VALUES(last_sync),
  raw_upstream = VALUES(raw_upstream),
  updated_at   = CURRENT_TIMESTAMP
`

const upsertBookervilleSQL = `
INSERT INTO bookerville_properties
  (bkv_id, name, address1, address2, city, state, zip, country,
   bedrooms, bathrooms, max_guests, booking_info, availability, manager,
   raw_xml, summary_synced_at, details_synced_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name              = COALESCE(VALUES(name), bookerville_properties.name),
  address1          = COALESCE(VALUES(address1), bookerville_properties.address1),
  address2          = COALESCE(VALUES(address2), bookerville_properties.address2),
  city              = COALESCE(VALUES(city), bookerville_properties.city),
  state             = COALESCE(VALUES(state), bookerville_properties.state),
  zip               = COALESCE(VALUES(zip), bookerville_properties.zip),
  country           = COALESCE(VALUES(country), bookerville_properties.country),
  bedrooms          = COALESCE(VALUES(bedrooms), bookerville_properties.bedrooms),
  bathrooms         = COALESCE(VALUES(bathrooms), bookerville_properties.bathrooms),
  max_guests        = COALESCE(VALUES(max_guests), bookerville_properties.max_guests),
  booking_info      = COALESCE(VALUES(booking_info), bookerville_properties.booking_info),
  availability      = COALESCE(VALUES(availability), bookerville_properties.availability),
  manager           = COALESCE(VALUES(manager), bookerville_properties.manager),
  raw_xml           = COALESCE(VALUES(raw_xml), bookerville_properties.raw_xml),
  summary_synced_at = COALESCE(VALUES(summary_synced_at), bookerville_properties.summary_synced_at),
  details_synced_at = COALESCE(VALUES(details_synced_at), bookerville_properties.details_synced_at)
`

const setCategorySQL = `
UPDATE properties SET category = ?, updated_at = CURRENT_TIMESTAMP WHERE property_id = ?
`

const insertMissSQL = `
INSERT INTO sync_misses (property_id, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE http_status = VALUES(http_status), reason = VALUES(reason), seen_at = CURRENT_TIMESTAMP
`

const getPropertySQL = `
SELECT property_id, title, summary, details, category, is_active, last_sync, raw_upstream
FROM properties
WHERE property_id = ?
`

const listCardsSQL = `
SELECT property_id, title, category, summary
FROM properties
WHERE is_active = 1 AND (? = '' OR category = ?)
ORDER BY property_id
LIMIT ? OFFSET ?
`

const getClientPropertySQL = `
SELECT airbnb_id, url, address, owner, last_sync
FROM client_properties
WHERE airbnb_id = ?
`

const listStaleClientSQL = `
SELECT airbnb_id, url, address, owner, last_sync
FROM client_properties
WHERE last_sync IS NULL OR last_sync < ?
ORDER BY airbnb_id
`

const touchClientPropertySQL = `
UPDATE client_properties SET last_sync = ? WHERE airbnb_id = ?
`

const insertContactSQL = `
INSERT INTO contact_messages (id, name, email, subject, body)
VALUES (?, ?, ?, ?, ?)
`

const getUserByEmailSQL = `
SELECT id, email, name, password_hash, is_admin FROM users WHERE email = ?
`

const getUserByIDSQL = `
SELECT id, email, name, password_hash, is_admin FROM users WHERE id = ?
`
