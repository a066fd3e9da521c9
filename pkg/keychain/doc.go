// Package keychain is the secure-storage boundary used by sign-in providers.
//
// Providers keep tokens, cached profile fields and password credentials here,
// each under its own service name built with ServiceName:
//
//	svc := keychain.ServiceName("com.example.app", ".AppleSignIn")
//	// "com.example.app.ANAuthLogin.AppleSignIn"
//
// Two backends are included: Memory for tests and ephemeral processes, and
// System, which delegates to the OS credential store through go-keyring.
package keychain
