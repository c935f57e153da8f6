package mailclient

type EmailCredential struct {
	ServerHost   string `yaml:"serverHost" validate:"required"`
	ServerPort   int    `yaml:"serverPort" validate:"required"`
	AuthIdentity string `yaml:"authIdentity" validate:"-"` // may be left blank to indicate that it is the same as the username
	Username     string `yaml:"username" validate:"required"`
	Password     string `yaml:"password" validate:"required"`

	// DisableStartTLS only for local mail catcher (i.e: mailhog), never use it on production.
	DisableStartTLS bool `yaml:"disableStartTLS"`
}
