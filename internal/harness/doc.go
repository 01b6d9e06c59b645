// Package harness runs filter scenarios end to end.
//
// A scenario seeds a table from a CUE schema into a fresh in-memory
// database, fixes "now" and the view timezone, then runs each case's
// filter and compares the matching row ids (or the error code) with the
// expectation.
//
// # Scenario Format
//
//	name: kolkata_today
//	description: "today" follows the view timezone
//	schema: ../schema          # CUE directory, relative to the scenario file
//	table: Dates
//	dialect: sqlite            # optional: sqlite (default) or duckdb
//	now: "2026-01-14T20:00:00Z"
//	timezone: Asia/Kolkata     # optional view timezone
//	rows:
//	  - {Date: "2026-01-14"}
//	  - {Date: "2026-01-15"}
//	cases:
//	  - name: eq today
//	    where: (Date,eq,today)
//	    expect_ids: [2]
//	  - name: stored filter rows
//	    filters:
//	      - {field: Date, comparison_op: eq, comparison_sub_op: today}
//	    expect_ids: [2]
//	  - name: malformed date
//	    where: (Date,eq,exactDate,someday)
//	    expect_error: INVALID_FILTER_VALUE
//
// Row ids are assigned in insertion order starting at 1.
//
// # Deterministic Testing
//
// The clock is fixed to the scenario's now and evaluation ids come from a
// fixed generator, so compiled SQL and results are identical across runs
// and can be compared against golden files (RunWithGolden).
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/kolkata_today.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
