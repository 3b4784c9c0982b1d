// Package testdb provides utilities for database integration testing.
//
// Tests that need PostgreSQL skip themselves unless a database URL is
// present in the environment (DATABASE_URL, USERS_TEST_DB_URL, or
// USERS_DATABASE_URL). Two isolation strategies are offered:
//
// Transaction isolation: WithTx runs the test body inside a transaction
// that is always rolled back, so tests can write freely against shared
// tables without cleanup and without observing each other's data.
//
//	db := testdb.GetTestDBWithT(t)
//	testdb.SetupTestDatabaseSchema(t, db)
//	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//		userStore := postgres.NewPostgresUserStore(tx, nil)
//		// assertions against the seeded table; nothing persists
//	})
//
// Schema isolation: OpenSchemaScopedDB creates a throwaway schema, points
// a fresh pool's search_path at it, and drops the schema when the test
// finishes. Use it for tests that must commit, such as exercising the
// reset and drop helpers themselves.
package testdb
