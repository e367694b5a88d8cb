package mysql

const insertRecordSQL = `
INSERT INTO records (id, type, created_at, payload)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE payload = VALUES(payload)
`

// Newest first; aligns with index (type, created_at).
const listRecordsSQL = `
SELECT id, type, created_at, payload
FROM records
ORDER BY created_at DESC, id DESC
LIMIT ?
`

const listRecordsByTypeSQL = `
SELECT id, type, created_at, payload
FROM records
WHERE type = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`
