// Package store persists telemetry samples and import batches in PostgreSQL.
package store

// SQL queries for the lc_racebox / imp_racebox tables.
const (
	// queryUpsertSample inserts one sample or, when the itow already exists,
	// overwrites every non-key column including imp_stamp (last write wins).
	// xmax = 0 only for freshly inserted tuples, so RETURNING tells inserts
	// and overwrites apart.
	queryUpsertSample = `
INSERT INTO lc_racebox (
    itow, imp_stamp, year, month, day, hour, minute, second,
    time_accuracy, nanoseconds, fix_status, numberof_svs,
    longitude, latitude, wgs_altitude, msl_altitude,
    horizontal_accuracy, vertical_accuracy, speed, heading,
    speed_accuracy, heading_accuracy, pdop,
    gforce_x, gforce_y, gforce_z,
    rotation_rate_x, rotation_rate_y, rotation_rate_z)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
        $9, $10, $11, $12,
        $13, $14, $15, $16,
        $17, $18, $19, $20,
        $21, $22, $23,
        $24, $25, $26,
        $27, $28, $29)
ON CONFLICT (itow) DO UPDATE SET
    imp_stamp           = excluded.imp_stamp,
    year                = excluded.year,
    month               = excluded.month,
    day                 = excluded.day,
    hour                = excluded.hour,
    minute              = excluded.minute,
    second              = excluded.second,
    time_accuracy       = excluded.time_accuracy,
    nanoseconds         = excluded.nanoseconds,
    fix_status          = excluded.fix_status,
    numberof_svs        = excluded.numberof_svs,
    longitude           = excluded.longitude,
    latitude            = excluded.latitude,
    wgs_altitude        = excluded.wgs_altitude,
    msl_altitude        = excluded.msl_altitude,
    horizontal_accuracy = excluded.horizontal_accuracy,
    vertical_accuracy   = excluded.vertical_accuracy,
    speed               = excluded.speed,
    heading             = excluded.heading,
    speed_accuracy      = excluded.speed_accuracy,
    heading_accuracy    = excluded.heading_accuracy,
    pdop                = excluded.pdop,
    gforce_x            = excluded.gforce_x,
    gforce_y            = excluded.gforce_y,
    gforce_z            = excluded.gforce_z,
    rotation_rate_x     = excluded.rotation_rate_x,
    rotation_rate_y     = excluded.rotation_rate_y,
    rotation_rate_z     = excluded.rotation_rate_z
RETURNING (xmax = 0)`

	// selectSample is the column list shared by every sample read. Rows
	// written by hand may carry NULLs, which read back as zero. A NULL
	// fix_status is kept and read back as unknown.
	selectSample = `
SELECT itow, imp_stamp,
       COALESCE(year, 0), COALESCE(month, 0), COALESCE(day, 0),
       COALESCE(hour, 0), COALESCE(minute, 0), COALESCE(second, 0),
       COALESCE(time_accuracy, 0), COALESCE(nanoseconds, 0),
       fix_status, COALESCE(numberof_svs, 0),
       COALESCE(longitude, 0), COALESCE(latitude, 0),
       COALESCE(wgs_altitude, 0), COALESCE(msl_altitude, 0),
       COALESCE(horizontal_accuracy, 0), COALESCE(vertical_accuracy, 0),
       COALESCE(speed, 0), COALESCE(heading, 0),
       COALESCE(speed_accuracy, 0), COALESCE(heading_accuracy, 0), COALESCE(pdop, 0),
       COALESCE(gforce_x, 0), COALESCE(gforce_y, 0), COALESCE(gforce_z, 0),
       COALESCE(rotation_rate_x, 0), COALESCE(rotation_rate_y, 0), COALESCE(rotation_rate_z, 0)
FROM lc_racebox`

	querySamplesByBatch = selectSample + `
WHERE imp_stamp = $1
ORDER BY itow`

	queryTrackByBatch = selectSample + `
WHERE imp_stamp = $1` + calendarOrder

	querySampleByITOW = selectSample + `
WHERE itow = $1`

	// calendarOrder sorts by the device's UTC calendar fields; itow wraps
	// every GPS week so it cannot order samples across weeks.
	calendarOrder = `
ORDER BY year, month, day, hour, minute, second, nanoseconds, itow`

	queryCountSamples = `SELECT count(*) FROM lc_racebox WHERE imp_stamp = $1`

	// queryCountsPerBatch counts samples per imp_stamp. The full join keeps
	// orphaned samples (no batch row) and empty batches (no samples).
	queryCountsPerBatch = `
WITH counts AS (
    SELECT imp_stamp, count(*) AS samples
    FROM lc_racebox
    WHERE imp_stamp IS NOT NULL
    GROUP BY imp_stamp
), batches AS (
    SELECT DISTINCT imp_stamp
    FROM imp_racebox
    WHERE imp_stamp IS NOT NULL
)
SELECT COALESCE(c.imp_stamp, b.imp_stamp), COALESCE(c.samples, 0), b.imp_stamp IS NOT NULL
FROM counts c
FULL OUTER JOIN batches b ON b.imp_stamp = c.imp_stamp
ORDER BY 1`

	selectBatch = `
SELECT b.id, b.imp_stamp, COALESCE(b.file_name, ''), COALESCE(b.duration, 0), b.insert_time,
       (SELECT count(*) FROM lc_racebox s WHERE s.imp_stamp = b.imp_stamp)
FROM imp_racebox b`

	// queryListBatches lists batches most recent first. A NULL limit
	// means no limit.
	queryListBatches = selectBatch + `
ORDER BY b.insert_time DESC NULLS LAST, b.id DESC
LIMIT $1`

	queryBatchByStamp = selectBatch + `
WHERE b.imp_stamp = $1
ORDER BY b.id DESC
LIMIT 1`

	queryBatchExists = `SELECT EXISTS (SELECT 1 FROM imp_racebox WHERE file_name = $1)`

	queryInsertBatch = `
INSERT INTO imp_racebox (imp_stamp, file_name, duration, insert_time)
VALUES ($1, $2, $3, COALESCE($4::timestamptz, now()))
RETURNING id, insert_time`

	queryDeleteSamples = `DELETE FROM lc_racebox WHERE imp_stamp = $1`

	queryDeleteBatch = `DELETE FROM imp_racebox WHERE imp_stamp = $1`
)
