// Package manual implements username/password sign-in and sign-up.
//
// Accounts live in a Directory. MemoryDirectory hashes passwords with bcrypt;
// FileDirectory persists the same data to a YAML file. The signed-in username
// and password are kept in the keychain so RestoreSession can re-authenticate
// silently after a relaunch.
//
//	dir, err := manual.OpenFileDirectory(filepath.Join(dataDir, "accounts.yaml"))
//	if err != nil {
//		return err
//	}
//	p := manual.New(dir, manual.WithKeychain(keychain.NewSystem()))
package manual
