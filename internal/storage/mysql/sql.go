package mysql

// Schema is applied by Repo.Migrate at boot. MySQL executes one statement
// per Exec call, so each DDL block is its own const.
//
// Filter columns (classification, city, ...) are derived from the
// consolidated JSON at write time so list queries never have to reach into
// the data blob.

const createPropertiesSQL = `
CREATE TABLE IF NOT EXISTS properties (
  property_id     VARCHAR(32)   NOT NULL,
  classification  VARCHAR(16)   NOT NULL,
  discard_reason  VARCHAR(64)   NULL,
  address         VARCHAR(512)  NULL,
  city            VARCHAR(128)  NULL,
  state           VARCHAR(32)   NULL,
  property_type   VARCHAR(64)   NULL,
  price           DECIMAL(14,2) NULL,
  data            JSON          NOT NULL,
  sources         JSON          NOT NULL,
  conflicts       JSON          NULL,
  discard_details JSON          NULL,
  last_updated    DATETIME(6)   NOT NULL,
  updated_at      TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (property_id),
  KEY idx_properties_classification (classification),
  KEY idx_properties_city (city)
)
`

const createRunsSQL = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
  id          BIGINT      NOT NULL AUTO_INCREMENT,
  started_at  DATETIME(6) NOT NULL,
  finished_at DATETIME(6) NOT NULL,
  feed_files  INT         NOT NULL,
  listings    INT         NOT NULL,
  properties  INT         NOT NULL,
  usable      INT         NOT NULL,
  flagged     INT         NOT NULL,
  discarded   INT         NOT NULL,
  failed      INT         NOT NULL,
  PRIMARY KEY (id)
)
`

const upsertPropertySQL = `
INSERT INTO properties
  (property_id, classification, discard_reason, address, city, state, property_type, price, data, sources, conflicts, discard_details, last_updated)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  classification  = VALUES(classification),
  discard_reason  = VALUES(discard_reason),
  address         = VALUES(address),
  city            = VALUES(city),
  state           = VALUES(state),
  property_type   = VALUES(property_type),
  price           = VALUES(price),
  data            = VALUES(data),
  sources         = VALUES(sources),
  conflicts       = VALUES(conflicts),
  discard_details = VALUES(discard_details),
  last_updated    = VALUES(last_updated),
  updated_at      = CURRENT_TIMESTAMP
`

// Property IDs are positional per run, so every run starts from a clean table.
const resetCatalogSQL = `DELETE FROM properties`

const insertRunSQL = `
INSERT INTO pipeline_runs
  (started_at, finished_at, feed_files, listings, properties, usable, flagged, discarded, failed)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getPropertySQL = `
SELECT
  property_id,
  classification,
  discard_reason,
  data,
  sources,
  conflicts,
  discard_details,
  last_updated
FROM properties
WHERE property_id = ?
`

// listPropertiesSQL is the base SELECT; the repo appends WHERE clauses for
// the optional classification and city filters, then ORDER BY and LIMIT.
const listPropertiesSQL = `
SELECT
  property_id,
  classification,
  discard_reason,
  data,
  sources,
  conflicts,
  discard_details,
  last_updated
FROM properties
`

const statsByClassificationSQL = `
SELECT classification, COUNT(*)
FROM properties
GROUP BY classification
`

const statsDiscardReasonsSQL = `
SELECT discard_reason, COUNT(*)
FROM properties
WHERE classification = 'discarded' AND discard_reason IS NOT NULL
GROUP BY discard_reason
`

const lastRunSQL = `
SELECT started_at, finished_at, feed_files, listings, properties, usable, flagged, discarded, failed
FROM pipeline_runs
ORDER BY id DESC
LIMIT 1
`
