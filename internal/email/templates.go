package email

import "fmt"

func layout(title, content string) string {
	return `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #6C5CE7; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .button { display: inline-block; padding: 12px 24px; background: #6C5CE7; color: white; text-decoration: none; border-radius: 4px; }
        .footer { padding: 10px; text-align: center; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>` + title + `</h1></div>
        <div class="content">` + content + `</div>
        <div class="footer"><p>Sent from Pilox</p></div>
    </div>
</body>
</html>`
}

// VerificationEmail builds the account verification message.
func VerificationEmail(name, verifyURL string) (subject, body string) {
	content := fmt.Sprintf(`<p>Hi %s,</p>
<p>Welcome to Pilox! Verify your email to unlock your welcome credits.</p>
<p><a class="button" href="%s">Verify Email</a></p>
<p>If you did not create this account, ignore this message.</p>`, name, verifyURL)
	return "Verify your Pilox account", layout("Verify your email", content)
}

// VideoReadyEmail builds the video completion notice.
func VideoReadyEmail(name, pdfName, videoURL string) (subject, body string) {
	content := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your video for <strong>%s</strong> is ready.</p>
<p><a class="button" href="%s">Watch Video</a></p>`, name, pdfName, videoURL)
	return "Your video is ready", layout("Video ready", content)
}

// VideoFailedEmail builds the video failure notice. Sent when generation
// fails after charging was reversed.
func VideoFailedEmail(name, pdfName string) (subject, body string) {
	content := fmt.Sprintf(`<p>Hi %s,</p>
<p>We could not finish the video for <strong>%s</strong>. Your credits have been returned.</p>
<p>Please try again, or contact support if the problem persists.</p>`, name, pdfName)
	return "Video generation failed", layout("Video generation failed", content)
}
