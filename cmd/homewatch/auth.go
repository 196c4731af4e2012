package main

import (
	"context"
	"fmt"

	"github.com/homewatch/homewatch/config"
	"github.com/homewatch/homewatch/services/dashboard"
	"golang.org/x/oauth2"
)

// calendarAuth runs the installed-app consent flow on a headless box: open
// the printed link elsewhere and paste the code back.
func calendarAuth(conf config.CalendarConf) {
	oauth, err := dashboard.OAuthConfig(conf.Credentials)
	if err != nil {
		fatalf("%s", err)
	}
	url := oauth.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the authorization code:\n%v\n", url)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		fatalf("Unable to read authorization code: %s", err)
	}
	token, err := oauth.Exchange(context.Background(), code)
	if err != nil {
		fatalf("Unable to retrieve token: %s", err)
	}
	if err := dashboard.WriteToken(conf.Token, token); err != nil {
		fatalf("%s", err)
	}
	fmt.Println("Saved token to", conf.Token)
}
