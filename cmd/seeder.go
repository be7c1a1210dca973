package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	formDatamodel "github.com/frahmantamala/worktrack/internal/core/datamodel/form"
	taskDatamodel "github.com/frahmantamala/worktrack/internal/core/datamodel/task"
	"github.com/frahmantamala/worktrack/internal/org"
)

const seedPassword = "password"

type seedUser struct {
	Email string
	Name  string
	Role  org.Role
}

// The demo org: one of each role, a leader with two reports, and a group.
var seedUsers = []seedUser{
	{"owner@worktrack.dev", "Olivia Owner", org.RoleOwner},
	{"admin@worktrack.dev", "Adam Admin", org.RoleAdmin},
	{"leader@worktrack.dev", "Lena Leader", org.RoleLeader},
	{"ema@worktrack.dev", "Ema Employee", org.RoleEmployee},
	{"eli@worktrack.dev", "Eli Employee", org.RoleEmployee},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a demo organization",
	Long:  `Seed the database with a demo organization, its members, tasks and report forms.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		lg := initLogger(cfg)

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		cost := cfg.Security.BCryptCost
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), cost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if clearData {
				if err := clearTables(tx); err != nil {
					return err
				}
				lg.Info("cleared existing data")
			}
			return seedOrganization(tx, string(hash))
		})
		if err != nil {
			log.Fatalf("seeding failed: %v", err)
		}

		fmt.Printf("Seeded demo organization; every user logs in with %q\n", seedPassword)
	},
}

func clearTables(tx *gorm.DB) error {
	for _, table := range []string{
		"form_answers", "extra_work_items", "daily_reports", "time_entries",
		"form_assignments", "form_questions", "forms", "tasks",
		"group_members", "org_groups", "leader_scopes", "org_members", "organizations", "users",
	} {
		if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func seedOrganization(tx *gorm.DB, passwordHash string) error {
	var orgID int64
	if err := tx.Raw("SELECT id FROM organizations WHERE name = ?", "Acme").Scan(&orgID).Error; err != nil {
		return fmt.Errorf("find organization: %w", err)
	}
	if orgID != 0 {
		fmt.Println("demo organization already exists; nothing to do")
		return nil
	}
	if err := tx.Raw("INSERT INTO organizations (name, created_at) VALUES (?, now()) RETURNING id", "Acme").Scan(&orgID).Error; err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}

	ids := make(map[string]int64, len(seedUsers))
	for _, u := range seedUsers {
		var id int64
		err := tx.Raw(`INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at)
			VALUES (?, ?, ?, true, now(), now())
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, u.Email, u.Name, passwordHash).Scan(&id).Error
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.Email, err)
		}
		ids[u.Email] = id

		if err := tx.Exec("INSERT INTO org_members (org_id, user_id, role, created_at) VALUES (?, ?, ?, now())",
			orgID, id, string(u.Role)).Error; err != nil {
			return fmt.Errorf("insert member %s: %w", u.Email, err)
		}
		fmt.Printf("Seeded %s (%s)\n", u.Email, u.Role)
	}

	leader := ids["leader@worktrack.dev"]
	for _, email := range []string{"ema@worktrack.dev", "eli@worktrack.dev"} {
		if err := tx.Exec("INSERT INTO leader_scopes (org_id, leader_id, member_id) VALUES (?, ?, ?)",
			orgID, leader, ids[email]).Error; err != nil {
			return fmt.Errorf("insert leader scope: %w", err)
		}
	}

	var groupID int64
	if err := tx.Raw("INSERT INTO org_groups (org_id, name) VALUES (?, ?) RETURNING id", orgID, "Platform").Scan(&groupID).Error; err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	if err := tx.Exec("INSERT INTO group_members (group_id, user_id) VALUES (?, ?)", groupID, ids["eli@worktrack.dev"]).Error; err != nil {
		return fmt.Errorf("insert group member: %w", err)
	}

	ema, eli := ids["ema@worktrack.dev"], ids["eli@worktrack.dev"]
	tasks := []taskDatamodel.Task{
		{OrgID: orgID, Title: "Import March invoices", Status: "in_progress", AssigneeID: &ema},
		{OrgID: orgID, Title: "Fix login redirect", Status: "todo", AssigneeID: &eli},
		{OrgID: orgID, Title: "Rotate staging secrets", Status: "todo", AssigneeID: &eli},
	}
	if err := tx.Create(&tasks).Error; err != nil {
		return fmt.Errorf("insert tasks: %w", err)
	}

	daily := formDatamodel.Form{OrgID: orgID, Title: "Daily check-in", Description: "Shown to everyone", IsActive: true}
	retro := formDatamodel.Form{OrgID: orgID, Title: "Team pulse", Description: "Leaders only", IsActive: true}
	if err := tx.Create(&daily).Error; err != nil {
		return fmt.Errorf("insert form: %w", err)
	}
	if err := tx.Create(&retro).Error; err != nil {
		return fmt.Errorf("insert form: %w", err)
	}

	questions := []formDatamodel.FormQuestion{
		{FormID: daily.ID, Position: 1, Prompt: "What did you finish today?", Kind: "text", Required: true},
		{FormID: daily.ID, Position: 2, Prompt: "Anything blocking you?", Kind: "text"},
		{FormID: retro.ID, Position: 1, Prompt: "How is the team doing?", Kind: "choice", Required: true,
			Choices: []string{"great", "ok", "struggling"}},
	}
	if err := tx.Create(&questions).Error; err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}

	leaderRole := string(org.RoleLeader)
	if err := tx.Create(&formDatamodel.FormAssignment{
		OrgID: orgID, FormID: retro.ID, TargetType: "role", TargetRole: &leaderRole,
	}).Error; err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}
