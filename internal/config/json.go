// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Karpushin

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and
// string-friendly durations for file-based configuration.
type StructuredJSONConfig struct {
	Auth struct {
		MaxLoginAttempts     int      `json:"max_login_attempts"`
		LockoutDuration      Duration `json:"lockout_duration"`
		AccessTokenSignKey   string   `json:"access_token_sign_key"`
		RefreshTokenSignKey  string   `json:"refresh_token_sign_key"`
		AccessTokenDuration  Duration `json:"access_token_duration"`
		RefreshTokenDuration Duration `json:"refresh_token_duration"`
		TokenIssuer          string   `json:"token_issuer"`
		TokenAudience        string   `json:"token_audience"`
		NotFoundDelay        Duration `json:"not_found_delay"`
		StorageFaultDelay    Duration `json:"storage_fault_delay"`
	} `json:"auth,omitempty"`

	Otp struct {
		TTL              Duration `json:"ttl"`
		MaxAttempts      int      `json:"max_attempts"`
		RateLimitWindow  Duration `json:"rate_limit_window"`
		RateLimitCeiling int      `json:"rate_limit_ceiling"`
	} `json:"otp,omitempty"`

	Mail struct {
		Host     string `json:"host"`
		Port     int    `json:"port"`
		Username string `json:"username"`
		Password string `json:"password"`
		From     string `json:"from"`
	} `json:"mail,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Environment string `json:"environment,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Auth: Auth{
			MaxLoginAttempts:     jsonCfg.Auth.MaxLoginAttempts,
			LockoutDuration:      time.Duration(jsonCfg.Auth.LockoutDuration),
			AccessTokenSignKey:   jsonCfg.Auth.AccessTokenSignKey,
			RefreshTokenSignKey:  jsonCfg.Auth.RefreshTokenSignKey,
			AccessTokenDuration:  time.Duration(jsonCfg.Auth.AccessTokenDuration),
			RefreshTokenDuration: time.Duration(jsonCfg.Auth.RefreshTokenDuration),
			TokenIssuer:          jsonCfg.Auth.TokenIssuer,
			TokenAudience:        jsonCfg.Auth.TokenAudience,
			NotFoundDelay:        time.Duration(jsonCfg.Auth.NotFoundDelay),
			StorageFaultDelay:    time.Duration(jsonCfg.Auth.StorageFaultDelay),
		},
		Otp: Otp{
			TTL:              time.Duration(jsonCfg.Otp.TTL),
			MaxAttempts:      jsonCfg.Otp.MaxAttempts,
			RateLimitWindow:  time.Duration(jsonCfg.Otp.RateLimitWindow),
			RateLimitCeiling: jsonCfg.Otp.RateLimitCeiling,
		},
		Mail: Mail{
			Host:     jsonCfg.Mail.Host,
			Port:     jsonCfg.Mail.Port,
			Username: jsonCfg.Mail.Username,
			Password: jsonCfg.Mail.Password,
			From:     jsonCfg.Mail.From,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Environment:  jsonCfg.Environment,
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
