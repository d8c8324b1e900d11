// Package letter renders the German welcome letter handed to new users,
// a single A4 page with the recipient address, the access credentials and
// an optional letterhead image behind the text.
package letter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"campusdata/console/schema"

	"github.com/go-pdf/fpdf"
)

// DefaultLetterheadURL is the stationery fetched when no custom background
// image is uploaded.
const DefaultLetterheadURL = "https://fagp.eu/files/APPs/Briefpapier_FAGP.png"

const (
	pageWidth  = 210.0
	pageHeight = 297.0
	leftMargin = 25.0
	rightEdge  = 185.0
	textWidth  = 160.0
)

// Accent color used for headings, credential values and rules.
const (
	goldR = 146
	goldG = 139
	goldB = 26
)

var fetchClient = &http.Client{Timeout: 15 * time.Second}

// FetchBackground downloads the letterhead image. The caller decides whether
// a failed fetch is fatal or the letter is rendered without a background.
func FetchBackground(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating letterhead request: %w", err)
	}

	res, err := fetchClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching letterhead: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error fetching letterhead: status %v", res.StatusCode)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading letterhead: %w", err)
	}
	return data, nil
}

func imageType(data []byte) (string, error) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG", nil
	case "image/jpeg":
		return "JPG", nil
	case "image/gif":
		return "GIF", nil
	default:
		return "", fmt.Errorf("unsupported letterhead image format")
	}
}

// AddressForm returns the salutation as used on an address block, where
// "Herr" becomes the accusative "Herrn".
func AddressForm(salutation string) string {
	if salutation == "Herr" {
		return "Herrn"
	}
	return salutation
}

// Greeting returns the salutation line for the letter body. Users without a
// gendered salutation get a neutral greeting.
func Greeting(user schema.PlatformUser) string {
	title := user.Title
	if title != "" {
		title += " "
	}
	switch user.Salutation {
	case "Frau":
		return fmt.Sprintf("Sehr geehrte Frau %v%v,", title, user.Lastname)
	case "Herr":
		return fmt.Sprintf("Sehr geehrter Herr %v%v,", title, user.Lastname)
	default:
		return fmt.Sprintf("Guten Tag %v %v,", user.Firstname, user.Lastname)
	}
}

// Filename returns the download name for a user's letter.
func Filename(user schema.PlatformUser) string {
	return fmt.Sprintf("Zugang_%v.pdf", user.Lastname)
}

const intro = "herzlich willkommen! Für Ihren persönlichen Zugriff auf den Virtuellen " +
	"Campus der Fachakademie wurden Ihre Benutzerdaten erstellt. Bitte nutzen Sie " +
	"die folgenden Daten für Ihre Anmeldung."

// Generate renders the welcome letter for user and returns the finished PDF.
// background may be nil, in which case the letter is rendered on plain white.
func Generate(user schema.PlatformUser, background []byte) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	if background != nil {
		format, err := imageType(background)
		if err != nil {
			return nil, err
		}
		opts := fpdf.ImageOptions{ImageType: format}
		pdf.RegisterImageOptionsReader("letterhead", opts, bytes.NewReader(background))
		pdf.ImageOptions("letterhead", 0, 0, pageWidth, pageHeight, false, opts, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11)

	// Recipient block, positioned for a DIN window envelope.
	y := 45.0
	for _, line := range recipientLines(user) {
		pdf.Text(leftMargin, y, tr(line))
		y += 6
	}

	date := fmt.Sprintf("Magdeburg, den %v", germanDate(time.Now()))
	pdf.SetFontSize(9)
	pdf.Text(rightEdge-pdf.GetStringWidth(tr(date)), 95, tr(date))

	pdf.SetTextColor(goldR, goldG, goldB)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(leftMargin, 110, tr("Ihre Zugangsdaten zum Virtuellen Campus"))

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(leftMargin, 125, tr(Greeting(user)))

	y = 135.0
	for _, line := range pdf.SplitText(intro, textWidth) {
		pdf.Text(leftMargin, y, tr(line))
		y += 5.5
	}

	pdf.SetDrawColor(goldR, goldG, goldB)
	pdf.SetLineWidth(0.4)
	pdf.Line(leftMargin, 155, rightEdge, 155)
	pdf.Line(leftMargin, 185, rightEdge, 185)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Text(30, 165, tr("Benutzername:"))
	pdf.Text(30, 175, tr("Passwort:"))

	pdf.SetTextColor(goldR, goldG, goldB)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(70, 165, tr(user.Login))
	pdf.Text(70, 175, tr(user.Password))

	pdf.SetTextColor(0, 0, 0)
	pdf.Text(leftMargin, 250, tr("Viel Erfolg!"))
	pdf.Text(leftMargin, 260, tr("Mit freundlichen Grüßen,"))

	pdf.SetTextColor(goldR, goldG, goldB)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Text(leftMargin, 270, tr("Ihre Fachakademie für Gemeindepastoral"))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error rendering letter: %w", err)
	}
	return buf.Bytes(), nil
}

func recipientLines(user schema.PlatformUser) []string {
	lines := make([]string, 0, 6)
	if user.Institution != "" {
		lines = append(lines, user.Institution)
	}
	if user.Department != "" {
		lines = append(lines, user.Department)
	}
	if user.Salutation != "" {
		lines = append(lines, AddressForm(user.Salutation))
	}

	name := user.Firstname + " " + user.Lastname
	if user.Title != "" {
		name = user.Title + " " + name
	}
	lines = append(lines, name)

	if user.Street != "" {
		lines = append(lines, user.Street)
	}
	if user.PostalCode != "" || user.City != "" {
		lines = append(lines, fmt.Sprintf("%v %v", user.PostalCode, user.City))
	}
	return lines
}

// germanDate formats t the way de-DE locales print dates, without leading
// zeros.
func germanDate(t time.Time) string {
	return fmt.Sprintf("%d.%d.%d", t.Day(), int(t.Month()), t.Year())
}
