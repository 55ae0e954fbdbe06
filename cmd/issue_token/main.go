package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sjperalta/fintera-tuition/internal/config"
	"github.com/sjperalta/fintera-tuition/internal/middleware"
	"github.com/sjperalta/fintera-tuition/internal/models"
)

// Issues a staff JWT signed with JWT_SECRET. Staff accounts live outside this
// service, so this is how operators hand out API access.
func main() {
	userID := flag.Uint("user", 1, "staff user id")
	email := flag.String("email", "", "staff email")
	role := flag.String("role", models.RoleViewer, "role: admin, accountant or viewer")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	switch *role {
	case models.RoleAdmin, models.RoleAccountant, models.RoleViewer:
	default:
		log.Fatalf("unknown role %q", *role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	token, err := middleware.IssueToken(cfg.JWTSecret, *userID, *email, *role, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
