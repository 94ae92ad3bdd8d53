package domain

// Default tenant and database targeted by the console.
const (
	DefaultTenant   = "default_tenant"
	DefaultDatabase = "default_database"
)

// Connection identifies one upstream instance. It is a value owned by the caller
// and passed into every call; nothing in this module keeps a current connection.
type Connection struct {
	Host     string
	Port     string
	Tenant   string
	Database string
}

// WithDefaults returns a copy with empty fields filled in.
func (c Connection) WithDefaults(host, port string) Connection {
	if c.Host == "" {
		c.Host = host
	}
	if c.Port == "" {
		c.Port = port
	}
	if c.Tenant == "" {
		c.Tenant = DefaultTenant
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	return c
}

// Scope returns the tenant/database qualified prefix of the v2 API.
func (c Connection) Scope() string {
	tenant, database := c.Tenant, c.Database
	if tenant == "" {
		tenant = DefaultTenant
	}
	if database == "" {
		database = DefaultDatabase
	}
	return "api/v2/tenants/" + tenant + "/databases/" + database
}
