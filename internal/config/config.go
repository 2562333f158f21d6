package config

type Config struct {
	Telegram         Telegram
	Budget           Budget
	PostgresEndpoint string `env:"POSTGRES_ENDPOINT"`
	MongoEndpoint    string `env:"MONGO_ENDPOINT"`
	AuthSalt         string `env:"AUTHORIZATION_SALT" envDefault:"wqkcmdieos"` // 10 characters is the maximum length
}

type Telegram struct {
	Timeout int `env:"TIMEOUT" envDefault:"60"`
}

type Budget struct {
	// Default is the budget in effect until the user's budget document exists
	Default float64 `env:"DEFAULT_BUDGET" envDefault:"10000"`
	// OverThreshold is the percentage of budget used above which the
	// dashboard switches to the over-budget state. Web client revisions
	// disagreed between 80 and 90, so it is configuration here.
	OverThreshold float64 `env:"OVER_BUDGET_THRESHOLD" envDefault:"80"`
}
