package config

import (
	"github.com/spf13/viper"

	"github.com/Veraticus/pulse/internal/sheets"
)

// LoadSheetsConfig loads Google Sheets configuration. It follows this precedence:
// 1. Viper configuration (from config file or PULSE_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. The refresh token stored by 'pulse auth sheets'
// 4. Default values
func LoadSheetsConfig(v *viper.Viper, creds *Credentials) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = ExpandPath(firstSet(v.GetString("sheets.service_account_path"),
		creds.getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")))
	config.ClientID = firstSet(v.GetString("sheets.client_id"), creds.getenv("GOOGLE_SHEETS_CLIENT_ID"))
	config.ClientSecret = firstSet(v.GetString("sheets.client_secret"), creds.getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
	config.SpreadsheetID = firstSet(v.GetString("sheets.spreadsheet_id"), creds.getenv("GOOGLE_SHEETS_SPREADSHEET_ID"))
	config.SpreadsheetName = firstSet(v.GetString("sheets.spreadsheet_name"),
		creds.getenv("GOOGLE_SHEETS_SPREADSHEET_NAME"), config.SpreadsheetName)
	config.TimeZone = firstSet(v.GetString("sheets.time_zone"), config.TimeZone)

	// Service accounts don't use refresh tokens; mixing both fails validation.
	if config.ServiceAccountPath == "" {
		config.RefreshToken = firstSet(v.GetString("sheets.refresh_token"), creds.SheetsRefreshToken())
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
