// Package output provides output formatting for discount-cli.
//
// Results can be rendered as:
//
//   - table: aligned columns for people (default)
//   - json: indented JSON for scripts
//   - yaml: YAML via gopkg.in/yaml.v3
//
// Types rendered as tables implement Tabular.
package output
