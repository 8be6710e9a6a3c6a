package utils

import (
	"fmt"
	"net/smtp"
	"strings"

	"psyhelp/config"
)

// Generic Send Email
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: PsyHelp <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	return nil
}

// SendCourseCompletedEmail congratulates a user on finishing a course. The
// certificate itself is available from the user's cabinet, so the mail only
// links there.
func SendCourseCompletedEmail(email, name, courseTitle string) {
	subject := "Поздравляем с завершением курса!"
	body := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Курс завершён</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #1f3c5d;">Курс завершён!</h2>
        <p>Здравствуйте, ` + name + `!</p>
        <p>Вы успешно прошли курс <strong>` + courseTitle + `</strong>. Ваш сертификат уже доступен в личном кабинете.</p>
        <div style="margin: 30px 0;">
            <a href="https://psyhelp.app/cabinet/certificates" style="background-color: #1f3c5d; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px;">Открыть сертификат</a>
        </div>
        <p>Спасибо, что заботитесь о себе вместе с нами.</p>
        <hr style="border: 1px solid #eee; margin: 20px 0;">
        <p style="font-size: 12px; color: #666;">Это автоматическое уведомление платформы PsyHelp.</p>
    </div>
</body>
</html>`

	go SendEmail([]string{email}, subject, body)
}
