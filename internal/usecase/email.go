package usecase

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/monjez/monjez/internal/config"
)

type Email struct {
	To          []string
	From        string
	CC          []string
	BCC         []string
	Subject     string
	Body        string
	Attachments []EmailAttachment
}

type EmailAttachment struct {
	Name        string
	ContentType string
	Content     []byte
}

//go:embed templates/*
var templates embed.FS

// SendOverdueDigestEmail mails the assignee the daily overdue reminder
// with a QR deep-link to the task page.
func (u Usecase) SendOverdueDigestEmail(ctx context.Context, task Task, days int) error {
	if task.AssigneeUserID == nil {
		return nil
	}

	assignee, err := u.repo.GetUserByID(ctx, *task.AssigneeUserID)
	if err != nil {
		return err
	}
	if assignee.Email == "" {
		return nil
	}

	body, err := buildOverdueEmailBody(task, assignee, days)
	if err != nil {
		return err
	}

	return u.mailProvider.SendEmail(ctx, Email{
		To:      []string{assignee.Email},
		From:    "no-reply@monjez.app",
		Subject: fmt.Sprintf("Overdue: %s", task.Title),
		Body:    body,
	})
}

type overdueEmailData struct {
	Title       string
	TitleAr     string
	URL         string
	CurrentYear string

	UserName    string
	TaskTitle   string
	TaskTitleAr string
	DueDate     string
	DaysOverdue int
	QRCodeURL   string
}

func buildOverdueEmailBody(task Task, assignee User, days int) (string, error) {
	tmpl, err := template.
		New("base.html").
		Funcs(template.FuncMap{
			"safeHTML": func(s string) template.HTML {
				return template.HTML(s)
			},
			"safeURL": func(s string) template.URL {
				return template.URL(s)
			},
		}).
		ParseFS(
			templates,
			"templates/base.html",
			"templates/overdue.html",
		)
	if err != nil {
		return "", err
	}

	taskURL := fmt.Sprintf("%s/tasks/%s", os.Getenv(config.ENV_KEY_APP_URL), task.ID)
	png, _ := qrcode.Encode(taskURL, qrcode.Low, 128)

	var due string
	if task.DueDate != nil {
		due = task.DueDate.Format("2006-01-02 03:04 PM")
	}

	data := overdueEmailData{
		Title:       "Overdue Task Reminder",
		TitleAr:     "تذكير بمهمة متأخرة",
		URL:         taskURL,
		CurrentYear: time.Now().Format("2006"),
		UserName:    assignee.Name,
		TaskTitle:   task.Title,
		TaskTitleAr: arabicTitle(task),
		DueDate:     due,
		DaysOverdue: days,
		QRCodeURL:   "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
