package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"journal-backend/internal/config"
	"journal-backend/internal/security"
)

// admintoken mints a bearer token for the admin API.
func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	userID := flag.Int("user", 1, "User id carried by the token")
	username := flag.String("username", "admin", "Username carried by the token")
	role := flag.String("role", security.RoleSiteAdmin, "site_admin or journal_admin")
	journals := flag.String("journals", "", "Comma separated journal ids a journal_admin may manage")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *role != security.RoleSiteAdmin && *role != security.RoleJournalAdmin {
		log.Fatalf("Unknown role %q", *role)
	}
	var ids []int32
	for _, s := range strings.Split(*journals, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			log.Fatalf("Invalid journal id %q: %v", s, err)
		}
		ids = append(ids, int32(id))
	}

	tm := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.TokenExpiry())
	token, err := tm.GenerateAdminToken(int32(*userID), *username, []string{*role}, ids)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
