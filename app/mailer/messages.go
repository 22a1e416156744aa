package mailer

import "fmt"

// ResetMessage builds the mail carrying a password-reset link.
func ResetMessage(to, siteName, resetURL string) Message {
	body := "You are receiving this email because you (or someone else) have requested the reset of the password for your account.\n\n" +
		"Please click on the following link, or paste this into your browser to complete the process:\n\n" +
		resetURL + "\n\n" +
		"If you did not request this, please ignore this email and your password will remain unchanged.\n"
	return Message{
		To:      to,
		Subject: "Reset your password on " + siteName,
		Text:    body,
		HTML:    body,
	}
}

// PasswordChangedMessage confirms a completed password change.
func PasswordChangedMessage(to, siteName string) Message {
	body := fmt.Sprintf("Hello,\n\nThis is a confirmation that the password for your account %s has just been changed.\n", to)
	return Message{
		To:      to,
		Subject: fmt.Sprintf("✔ Your %s password has been changed", siteName),
		Text:    body,
		HTML:    body,
	}
}
