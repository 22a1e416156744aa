package ui

import (
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type step int

const (
	stepWelcome step = iota
	stepTitle
	stepDatabase
	stepRedis
	stepMail
	stepAdmin
	stepApplying
	stepDone
)

// Result is everything the wizard collects; Apply turns it into a written
// config file and a seeded database.
type Result struct {
	SiteTitle string

	DBDriver string
	DBPath   string
	DBHost   string
	DBPort   int
	DBUser   string
	DBPass   string
	DBName   string

	RedisAddr     string
	RedisPassword string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

type applyDoneMsg struct{ err error }

type WizardModel struct {
	Step     step
	Form     Form
	Result   Result
	Err      error
	Apply    func(Result) error
	Quitting bool
}

func NewWizardModel(apply func(Result) error) WizardModel {
	return WizardModel{Step: stepWelcome, Apply: apply}
}

func (m WizardModel) Init() tea.Cmd { return nil }

func (m WizardModel) formFor(s step) Form {
	switch s {
	case stepTitle:
		return NewForm([]Field{
			{Label: "Website Title", Placeholder: "Cellar", Default: "Cellar"},
		})
	case stepDatabase:
		return NewForm([]Field{
			{Label: "Driver (sqlite/mysql)", Default: "sqlite"},
			{Label: "SQLite file", Default: "cellar.db"},
			{Label: "MySQL host", Default: "127.0.0.1"},
			{Label: "MySQL port", Default: "3306"},
			{Label: "MySQL user", Default: "root"},
			{Label: "MySQL password", Secret: true},
			{Label: "MySQL database", Default: "cellar"},
		})
	case stepRedis:
		return NewForm([]Field{
			{Label: "Redis address", Default: "127.0.0.1:6379"},
			{Label: "Redis password", Secret: true},
		})
	case stepMail:
		return NewForm([]Field{
			{Label: "SMTP host", Placeholder: "smtp.example.com"},
			{Label: "SMTP port", Default: "587"},
			{Label: "SMTP username", Placeholder: "mailer@example.com"},
			{Label: "SMTP password", Secret: true},
			{Label: "Use STARTTLS (y/n)", Default: "y"},
		})
	case stepAdmin:
		return NewForm([]Field{
			{Label: "Admin name"},
			{Label: "Admin email"},
			{Label: "Admin password", Secret: true},
			{Label: "Confirm password", Secret: true},
		})
	}
	return Form{}
}

func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (m.Step == stepDone && msg.Type == tea.KeyEnter) {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Step == stepWelcome && msg.Type == tea.KeyEnter {
			m.Step = stepTitle
			m.Form = m.formFor(m.Step)
			return m, nil
		}

	case applyDoneMsg:
		if msg.err != nil {
			m.Err = msg.err
			m.Step = stepAdmin
			m.Form = m.formFor(m.Step)
			return m, nil
		}
		m.Step = stepDone
		return m, nil
	}

	if m.Step >= stepTitle && m.Step <= stepAdmin {
		form, cmd, submitted := m.Form.Update(msg)
		m.Form = form
		if !submitted {
			return m, cmd
		}

		if err := m.collect(); err != nil {
			m.Err = err
			return m, nil
		}
		m.Err = nil

		if m.Step == stepAdmin {
			m.Step = stepApplying
			apply, result := m.Apply, m.Result
			return m, func() tea.Msg { return applyDoneMsg{err: apply(result)} }
		}
		m.Step++
		m.Form = m.formFor(m.Step)
		return m, nil
	}

	return m, nil
}

// collect validates the active step's form into Result.
func (m *WizardModel) collect() error {
	vals := m.Form.Values()
	switch m.Step {
	case stepTitle:
		if vals[0] == "" {
			return fmt.Errorf("website title cannot be empty")
		}
		m.Result.SiteTitle = vals[0]

	case stepDatabase:
		driver := strings.ToLower(vals[0])
		if driver != "sqlite" && driver != "mysql" {
			return fmt.Errorf("driver must be sqlite or mysql")
		}
		m.Result.DBDriver = driver
		m.Result.DBPath = vals[1]
		m.Result.DBHost = vals[2]
		port, err := strconv.Atoi(vals[3])
		if err != nil {
			return fmt.Errorf("mysql port must be a number")
		}
		m.Result.DBPort = port
		m.Result.DBUser = vals[4]
		m.Result.DBPass = vals[5]
		m.Result.DBName = vals[6]
		if driver == "sqlite" && m.Result.DBPath == "" {
			return fmt.Errorf("sqlite file cannot be empty")
		}

	case stepRedis:
		if vals[0] == "" {
			return fmt.Errorf("redis address cannot be empty")
		}
		m.Result.RedisAddr = vals[0]
		m.Result.RedisPassword = vals[1]

	case stepMail:
		if vals[0] == "" {
			return fmt.Errorf("SMTP host cannot be empty")
		}
		port, err := strconv.Atoi(vals[1])
		if err != nil {
			return fmt.Errorf("SMTP port must be a number")
		}
		if _, err := mail.ParseAddress(vals[2]); err != nil {
			return fmt.Errorf("SMTP username must be a valid email address")
		}
		if vals[3] == "" {
			return fmt.Errorf("SMTP password cannot be empty")
		}
		m.Result.SMTPHost = vals[0]
		m.Result.SMTPPort = port
		m.Result.SMTPUsername = vals[2]
		m.Result.SMTPPassword = vals[3]
		m.Result.SMTPUseTLS = strings.HasPrefix(strings.ToLower(vals[4]), "y")

	case stepAdmin:
		if vals[0] == "" {
			return fmt.Errorf("admin name cannot be blank")
		}
		if _, err := mail.ParseAddress(vals[1]); err != nil {
			return fmt.Errorf("admin email is not valid")
		}
		if len(vals[2]) < 8 {
			return fmt.Errorf("password must be at least 8 characters long")
		}
		if vals[2] != vals[3] {
			return fmt.Errorf("passwords must match")
		}
		m.Result.AdminName = vals[0]
		m.Result.AdminEmail = vals[1]
		m.Result.AdminPassword = vals[2]
	}
	return nil
}

var stepTitles = map[step]string{
	stepTitle:    "Step 1/5 — Website title",
	stepDatabase: "Step 2/5 — Database",
	stepRedis:    "Step 3/5 — Sessions (Redis)",
	stepMail:     "Step 4/5 — Outgoing mail",
	stepAdmin:    "Step 5/5 — Admin account",
}

func (m WizardModel) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Cellar Setup") + "\n\n")

	switch m.Step {
	case stepWelcome:
		b.WriteString("This wizard writes the config file and creates the first admin account.\n\n")
		b.WriteString(blurredStyle.Render("Press Enter to begin, Ctrl+C to quit"))

	case stepApplying:
		b.WriteString("Writing configuration and creating the admin account...\n")

	case stepDone:
		b.WriteString(successMessageStyle("Setup complete.") + "\n\n")
		b.WriteString("Start the server with: go run .\n\n")
		b.WriteString(blurredStyle.Render("Press Enter to exit"))

	default:
		b.WriteString(stepStyle.Render(stepTitles[m.Step]) + "\n\n")
		b.WriteString(m.Form.View())
		b.WriteString("\n\n")
		b.WriteString(blurredStyle.Render("Tab to change fields, Enter on the last field to continue"))
	}

	if m.Err != nil {
		b.WriteString("\n\n")
		b.WriteString(errorMessageStyle(m.Err.Error()))
	}

	return docStyle.Render(b.String())
}
