// Package database provides SQLite storage for the command audit log.
//
// The bridge deliberately keeps no device or cache state on disk —
// all bridge caches are process-lifetime and reset on restart. The
// database exists only for the optional audit trail of translated
// commands, which the engine writes but never reads back.
//
// # Configuration
//
//	database:
//	  enabled: true
//	  path: "./data/stbridge.db"
//	  wal_mode: true
//	  busy_timeout: 5
package database
