package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gsheets "google.golang.org/api/sheets/v4"
)

// OAuthClient builds the authenticated HTTP client for the spreadsheet from
// installed-application OAuth files: the client secret downloaded from the
// Google Cloud console and a token minted by a prior consent flow. The
// returned client refreshes the access token as needed; the refreshed token
// is not written back to disk.
func OAuthClient(ctx context.Context, credentialsFile, tokenFile string) (*http.Client, error) {
	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets: read credentials file: %w", err)
	}

	cfg, err := google.ConfigFromJSON(raw, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("sheets: parse credentials file: %w", err)
	}

	tok, err := readToken(tokenFile)
	if err != nil {
		return nil, err
	}
	return cfg.Client(ctx, tok), nil
}

func readToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("sheets: token file %s not found: complete the Google OAuth consent flow and save the token there first", path)
		}
		return nil, fmt.Errorf("sheets: open token file: %w", err)
	}
	defer f.Close()

	var tok oauth2.Token
	if err := json.NewDecoder(f).Decode(&tok); err != nil {
		return nil, fmt.Errorf("sheets: decode token file: %w", err)
	}
	return &tok, nil
}
