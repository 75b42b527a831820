package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log"

	"github.com/skip2/go-qrcode"
	"github.com/wneessen/go-mail"

	"github.com/neetrino/whiteshop/internal/config"
	"github.com/neetrino/whiteshop/internal/models"
)

func newMailClient() (*mail.Client, error) {
	return mail.NewClient(config.C.SMTPHost,
		mail.WithPort(config.C.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(config.C.SMTPUsername),
		mail.WithPassword(config.C.SMTPPassword),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
}

func sendHTML(to, subject, htmlBody string, attachName string, attachment []byte) error {
	msg := mail.NewMsg()

	if err := msg.From(config.C.MailFrom); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if attachment != nil {
		msg.AttachReader(attachName, bytes.NewReader(attachment))
	}

	client, err := newMailClient()
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// SendOrderConfirmation envoie la confirmation de commande avec un QR de suivi.
// Appelé hors du chemin de requête : les échecs sont loggés, jamais propagés.
func SendOrderConfirmation(order models.Order) error {
	qr := GenerateTrackingQR(order.Number)
	html := GenerateOrderConfirmationHTML(order, qr)
	subject := fmt.Sprintf("Confirmation de votre commande %s", order.Number)
	return sendHTML(order.Email, subject, html, "", nil)
}

// SendContactNotification transmet un message de contact à la boîte du shop
func SendContactNotification(msg models.ContactMessage) error {
	html := fmt.Sprintf(`
		<h3>Nouveau message de contact</h3>
		<p><strong>De :</strong> %s &lt;%s&gt;</p>
		<p><strong>Sujet :</strong> %s</p>
		<p>%s</p>`, msg.Name, msg.Email, msg.Subject, msg.Message)
	return sendHTML(config.C.ContactInbox, "📬 Nouveau message de contact", html, "", nil)
}

// GenerateTrackingQR encode l'URL de suivi de commande en QR base64
// prêt à mettre dans <img src="...">
func GenerateTrackingQR(orderNumber string) string {
	trackURL := fmt.Sprintf("%s/orders/track/%s", config.C.FrontendURL, orderNumber)
	png, err := qrcode.Encode(trackURL, qrcode.Medium, 256)
	if err != nil {
		log.Printf("⚠️ Erreur génération QR de suivi: %v", err)
		return ""
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande
func GenerateOrderConfirmationHTML(order models.Order, qrBase64 string) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%s</td>
				<td>%d</td>
				<td>%.2f€</td>
				<td>%.2f€</td>
			</tr>`, item.Title, item.SKU, item.Quantity, item.UnitPrice, item.LineTotal)
	}

	qrHTML := ""
	if qrBase64 != "" {
		qrHTML = fmt.Sprintf(`<p style="text-align:center;"><img src="%s" alt="Suivi de commande" width="160" height="160"/></p>`, qrBase64)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre commande %s</h2>
		<p>Bonjour %s,</p>
		<p>Merci pour votre commande ! Voici le récapitulatif :</p>
		<table width="100%%" cellpadding="6" style="border-collapse: collapse;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th align="left">Article</th>
					<th align="left">SKU</th>
					<th>Qté</th>
					<th>Prix</th>
					<th>Total</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
		</table>
		<p style="text-align:right;">
			Sous-total : %.2f€<br/>
			Livraison : %.2f€<br/>
			TVA : %.2f€<br/>
			<strong>Total : %.2f€</strong>
		</p>
		%s
		<p style="color:#888;font-size:12px;">Scannez le QR code pour suivre votre commande.</p>
	</div>
</body>
</html>`, order.Number, order.Name, itemsHTML,
		order.Subtotal, order.ShippingTotal, order.TaxTotal, order.Total, qrHTML)
}
