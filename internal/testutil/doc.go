// Package testutil provides shared test utilities for routeopt.
//
// # Fixtures
//
// The fixtures.go file provides sample data for testing:
//
//   - SampleOrders(), SampleShoppers(), SampleRequest() - a small delivery set
//   - SampleResult() - a completed result consistent with SampleRequest
//   - ProgressLine, CompletedLine, ErrorLine - encoded stream events
//   - NDJSON(lines...) - joins lines into a newline-terminated stream
//   - DescentStream(n, result) - n progress samples then a completed event
//
// # Environment Helpers
//
// The env.go file provides file helpers:
//
//   - MustMarshalJSON(t, v), MustUnmarshalJSON(t, data, v)
//   - WriteTestFile(t, base, path, content) - writes a file in a test dir
//   - WriteSampleData(t, dir) - writes a data file for the CLI
//
// # Timeouts
//
// The timeout.go file provides contexts that respect the test deadline:
//
//   - ContextWithTestDeadline(t, fallback)
//   - StreamContext(t), ShortOperationContext(t)
//
// # Usage
//
//	func TestSomething(t *testing.T) {
//	    ctx, cancel := testutil.StreamContext(t)
//	    defer cancel()
//	    body := testutil.DescentStream(5, testutil.SampleResult())
//	    // ... serve body and submit testutil.SampleRequest() ...
//	}
package testutil
