package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// seedTool describes one catalog entry inserted during development seeding.
type seedTool struct {
	name        string
	url         string
	description string
	featured    bool
}

// seedCategory groups seed tools under a category.
type seedCategory struct {
	name        string
	slug        string
	description string
	tools       []seedTool
}

var seedCategories = []seedCategory{
	{
		name: "Development", slug: "development",
		description: "Code editors, testing tools, deployment platforms",
		tools: []seedTool{
			{"GitHub", "https://github.com", "Version control and collaboration platform", true},
			{"Visual Studio Code", "https://code.visualstudio.com", "Powerful code editor", true},
			{"Postman", "https://www.postman.com", "API development and testing", false},
			{"Vercel", "https://vercel.com", "Frontend deployment platform", false},
			{"Netlify", "https://netlify.com", "Web development platform", false},
		},
	},
	{
		name: "Design", slug: "design",
		description: "UI/UX tools, graphics, prototyping",
		tools: []seedTool{
			{"Figma", "https://figma.com", "Collaborative interface design tool", true},
			{"Canva", "https://canva.com", "Graphic design platform", false},
			{"Adobe Creative Cloud", "https://adobe.com", "Creative software suite", false},
			{"Unsplash", "https://unsplash.com", "Free stock photography", false},
			{"Dribbble", "https://dribbble.com", "Design inspiration community", false},
		},
	},
	{
		name: "Analytics", slug: "analytics",
		description: "Data analysis, reporting, metrics",
		tools: []seedTool{
			{"Google Analytics", "https://analytics.google.com", "Web analytics platform", true},
			{"Hotjar", "https://hotjar.com", "User behavior analytics", false},
			{"Mixpanel", "https://mixpanel.com", "Product analytics platform", false},
			{"Amplitude", "https://amplitude.com", "Digital analytics platform", false},
		},
	},
	{
		name: "Marketing", slug: "marketing",
		description: "SEO tools, social media, email marketing",
		tools: []seedTool{
			{"Mailchimp", "https://mailchimp.com", "Email marketing platform", true},
			{"SEMrush", "https://semrush.com", "SEO and marketing toolkit", false},
			{"Buffer", "https://buffer.com", "Social media management", false},
			{"Hootsuite", "https://hootsuite.com", "Social media management platform", false},
		},
	},
	{
		name: "Productivity", slug: "productivity",
		description: "Project management, time tracking, collaboration",
		tools: []seedTool{
			{"Notion", "https://notion.so", "All-in-one workspace", true},
			{"Trello", "https://trello.com", "Project management boards", false},
			{"Asana", "https://asana.com", "Team project management", false},
			{"Todoist", "https://todoist.com", "Task management app", false},
		},
	},
	{
		name: "Communication", slug: "communication",
		description: "Chat, video conferencing, team communication",
		tools: []seedTool{
			{"Slack", "https://slack.com", "Team communication platform", true},
			{"Zoom", "https://zoom.us", "Video conferencing platform", false},
			{"Discord", "https://discord.com", "Voice and text chat", false},
			{"Microsoft Teams", "https://teams.microsoft.com", "Collaboration platform", false},
		},
	},
}

// Seed populates the database with initial development data: a default
// admin user, a regular member, and a starter catalog of categories and
// tools. It is a no-op when users already exist.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	if err := seedUsers(db); err != nil {
		return err
	}
	if err := seedCatalog(db); err != nil {
		return err
	}

	slog.Info("database seeded with default users and catalog",
		"admin", "admin@toolhub.local",
		"member", "member@toolhub.local",
		"password", "password",
	)
	return nil
}

func seedUsers(db *sql.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// 2FA is not enabled for the seeded admin — they must set it up on
	// first login.
	users := []struct {
		email       string
		displayName string
		isAdmin     bool
	}{
		{"admin@toolhub.local", "Admin", true},
		{"member@toolhub.local", "Member", false},
	}
	for _, u := range users {
		_, err = db.Exec(`
			INSERT INTO users (email, password_hash, display_name, is_admin)
			VALUES ($1, $2, $3, $4)
		`, u.email, string(hash), u.displayName, u.isAdmin)
		if err != nil {
			return fmt.Errorf("seed insert user %s: %w", u.email, err)
		}
	}
	return nil
}

func seedCatalog(db *sql.DB) error {
	for i, c := range seedCategories {
		var categoryID string
		err := db.QueryRow(`
			INSERT INTO tool_categories (name, slug, description, sort_order, is_active)
			VALUES ($1, $2, $3, $4, TRUE)
			RETURNING id
		`, c.name, c.slug, c.description, i*10).Scan(&categoryID)
		if err != nil {
			return fmt.Errorf("seed insert category %s: %w", c.slug, err)
		}

		for j, tool := range c.tools {
			_, err = db.Exec(`
				INSERT INTO tools (name, description, url, category_id, sort_order, is_active, is_featured)
				VALUES ($1, $2, $3, $4, $5, TRUE, $6)
			`, tool.name, tool.description, tool.url, categoryID, j*10, tool.featured)
			if err != nil {
				return fmt.Errorf("seed insert tool %s: %w", tool.name, err)
			}
		}
	}
	return nil
}
