// Package commands defines the sfctl CLI, a terminal client for the same
// authentication service the Storefront server uses.
//
// Commands
//
//   - login     Sign in and keep the token
//   - register  Create an account and keep the token
//   - whoami    Fetch and print the signed-in user
//   - logout    Forget the token
//   - status    Show the session phase and which pages the guard would allow
//
// # Implementation
//
// The root command opens file storage under --home and builds one session
// store over it before any subcommand runs. The token is kept under the
// same "token" key the server uses per browser.
package commands
