// Package harness runs declaration scenarios through the generator.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: geometry
//	description: "HEIGHT and WIDTH multiply in every shared type"
//	package: geometry
//	options:
//	  prefix: Const
//	  goarch: amd64
//	  strict: false
//	source: |
//	  pub const HEIGHT: i8 | i16 | i32 = 16
//	  pub const WIDTH: i16 | i32 = 32
//	expect:
//	  ok: true
//	  values:
//	    WIDTH: "32"
//	  types:
//	    HEIGHT: ConstHeight
//	  accessors:
//	    HEIGHT: [I8, I16, I32]
//	  contains:
//	    - "i16: int16(32),"
//	  host: pass
//
// A failing scenario sets ok: false and lists the expected error codes:
//
//	expect:
//	  ok: false
//	  codes: [E126]
//
// # Expectations
//
//   - ok: whether the list expands (required)
//   - codes: error codes in report order (ok: false only)
//   - values: exact constant values, compared with go/constant
//   - types: generated container type names
//   - accessors: accessor method names in declaration order
//   - contains: substrings of the generated file
//   - host: pass or fail; type-checks the generated file with go/types
//
// Host checks need an importer that can load the numeric package. Run
// returns an error when a scenario asks for one and none is configured.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/geometry.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.New(harness.WithImporter(imp)).Run(scenario)
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
