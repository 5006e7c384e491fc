package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ratelink/ratelink/internal/config"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/logger"
	mongorepo "github.com/ratelink/ratelink/internal/repository/mongo"
	"github.com/ratelink/ratelink/internal/types"

	"github.com/ratelink/ratelink/internal/domain/user"
)

// Seeds a super admin account. Intended for bootstrapping a fresh deployment:
//
//	go run ./scripts/seedadmin -email root@example.com -name "Root" -password <pw>
func main() {
	email := flag.String("email", "", "super admin email")
	name := flag.String("name", "Super Admin", "display name")
	password := flag.String("password", "", "initial password")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: seedadmin -email <email> -password <password> [-name <name>]")
		os.Exit(1)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongorepo.NewClient(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to connect to mongo", "error", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	userRepo := mongorepo.NewUserRepository(client)

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalw("failed to hash password", "error", err)
	}

	u := &user.User{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USER),
		Email:        *email,
		Name:         *name,
		Role:         types.RoleSuperAdmin,
		PasswordHash: string(hash),
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}

	if err := userRepo.Create(ctx, u); err != nil {
		if ierr.IsAlreadyExists(err) {
			log.Fatalw("a user with this email already exists", "email", *email)
		}
		log.Fatalw("failed to create super admin", "error", err)
	}

	log.Infow("super admin created", "user_id", u.ID, "email", u.Email)
}
