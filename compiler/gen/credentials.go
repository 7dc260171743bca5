package gen

// CredentialShape selects the adapter wired into a generated client. The
// set of shapes is closed: KeyAuth, PasswordAuth and HostAuth.
type CredentialShape interface {
	// Guards returns the environment variables the client reads at load time,
	// in declaration order.
	Guards() []Guard
	credentials()
}

// Guard is a package-level variable of a generated client that is set from
// an environment variable and panics when it is missing.
type Guard struct {
	Var string
	Env string
}

// KeyAuth authenticates with an Otto API key.
type KeyAuth struct {
	ServerEnv   string
	DatabaseEnv string
	APIKeyEnv   string
}

// PasswordAuth logs in with a FileMaker account.
type PasswordAuth struct {
	ServerEnv   string
	DatabaseEnv string
	UsernameEnv string
	PasswordEnv string
}

// HostAuth runs inside a FileMaker web viewer and calls ScriptName.
type HostAuth struct {
	ScriptName string
}

func (KeyAuth) credentials()      {}
func (PasswordAuth) credentials() {}
func (HostAuth) credentials()     {}

// Guards implements CredentialShape.
func (a KeyAuth) Guards() []Guard {
	return []Guard{
		{Var: "database", Env: a.DatabaseEnv},
		{Var: "server", Env: a.ServerEnv},
		{Var: "apiKey", Env: a.APIKeyEnv},
	}
}

// Guards implements CredentialShape.
func (a PasswordAuth) Guards() []Guard {
	return []Guard{
		{Var: "database", Env: a.DatabaseEnv},
		{Var: "server", Env: a.ServerEnv},
		{Var: "username", Env: a.UsernameEnv},
		{Var: "password", Env: a.PasswordEnv},
	}
}

// Guards implements CredentialShape. Host clients read no environment.
func (HostAuth) Guards() []Guard { return nil }
