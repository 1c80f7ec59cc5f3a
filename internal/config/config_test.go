package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Password: "secret"},
		JWT:      JWTConfig{Secret: "jwt"},
		App:      AppConfig{Timezone: "Asia/Manila"},
		Payroll: PayrollConfig{
			Concurrency:     4,
			EmployeeTimeout: time.Second,
			AnnualWorkDays:  261,
			HoursPerDay:     8,
		},
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing db password", func(c *Config) { c.Database.Password = "" }, true},
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"zero concurrency", func(c *Config) { c.Payroll.Concurrency = 0 }, true},
		{"zero hours per day", func(c *Config) { c.Payroll.HoursPerDay = 0 }, true},
		{"bad timezone", func(c *Config) { c.App.Timezone = "Mars/Olympus" }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	c := &Config{Database: DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "n", SSLMode: "disable"}}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", c.DatabaseURL())
}
