// Package commands defines the budget CLI and wires dependencies for subcommands.
//
// Commands
//
//   - add            Record an expense
//   - list           Print the expense history in entry order
//   - summary        Print totals per category, top categories and spend over time
//   - info           Show the backing file location and size
//   - serve          Run the web UI and JSON API
//   - export sqlite  Mirror the history into a SQLite database
//   - watch          Follow expense.added events from AMQP
//
// # Configuration
//
// Settings come from defaults, an optional YAML file (--config or
// BUDGET_CONFIG), the environment (a .env file is loaded when present) and
// finally flags, each layer overriding the previous one.
//
// # Implementation
//
// The root command loads configuration and builds the store and logger
// before any subcommand runs. Commands that record expenses also connect to
// AMQP when AMQP_URL is set; a broker that cannot be reached only disables
// event publishing.
package commands
