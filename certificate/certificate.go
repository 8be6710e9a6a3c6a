package certificate

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
)

// NumberPrefix is the fixed prefix of every certificate number.
const NumberPrefix = "PTSR"

// Canvas size of the rendered certificate, landscape A4 at 150 DPI.
const (
	certWidth  = 1754
	certHeight = 1240
)

// Data holds everything the renderer needs. It carries plain strings only so
// rendering stays a pure function with no database or clock access.
type Data struct {
	StudentName string
	CourseTitle string
	Duration    string
	Date        string
	Number      string
}

// NewNumber builds a certificate number from the course slug and the issuance
// time. Re-issuance produces a fresh number, the original is not reused.
func NewNumber(slug string, issuedAt time.Time) string {
	return fmt.Sprintf("%s-%s-%d", NumberPrefix, strings.ToUpper(slug), issuedAt.UnixMilli())
}

// genitive month names for the completion date line
var months = [12]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// FormatCompletionDate formats a timestamp as a long Russian date,
// e.g. "2 сентября 2026 г."
func FormatCompletionDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d г.", t.Day(), months[t.Month()-1], t.Year())
}

// FormatWeeks formats a course duration with the right plural form of
// "неделя": 1 week is singular, 2-4 take the few-form, everything else
// (including 0) takes the many-form.
func FormatWeeks(weeks int) string {
	word := "недель"
	if weeks == 1 {
		word = "неделя"
	} else if weeks >= 2 && weeks <= 4 {
		word = "недели"
	}
	return fmt.Sprintf("%d %s", weeks, word)
}

// EncodeDataURI wraps a rendered PNG into a self-contained data URI so the
// artifact can be stored in a single text column.
func EncodeDataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// Render draws the completion certificate and returns it as PNG bytes. The
// layout is fixed: bordered frame, title banner, student and course lines,
// duration and date, two signature blocks, certificate number at the bottom.
// fontPath points at a TTF with Cyrillic glyphs; when it is empty or
// unreadable the context's built-in face is used so rendering never fails on
// a missing deployment asset.
func Render(data Data, fontPath string) ([]byte, error) {
	dc := gg.NewContext(certWidth, certHeight)

	var fnt *truetype.Font
	if fontPath != "" {
		if raw, err := os.ReadFile(fontPath); err == nil {
			if parsed, err := truetype.Parse(raw); err == nil {
				fnt = parsed
			}
		}
	}
	setFace := func(points float64) {
		if fnt != nil {
			dc.SetFontFace(truetype.NewFace(fnt, &truetype.Options{Size: points}))
		}
	}

	// Background
	dc.SetHexColor("#FFFFFF")
	dc.Clear()

	// Double border frame
	dc.SetHexColor("#1F3C5D")
	dc.SetLineWidth(6)
	dc.DrawRectangle(40, 40, certWidth-80, certHeight-80)
	dc.Stroke()
	dc.SetLineWidth(2)
	dc.DrawRectangle(60, 60, certWidth-120, certHeight-120)
	dc.Stroke()

	// Title banner
	setFace(76)
	dc.DrawStringAnchored("СЕРТИФИКАТ", certWidth/2, 210, 0.5, 0.5)
	setFace(34)
	dc.DrawStringAnchored("подтверждает, что", certWidth/2, 330, 0.5, 0.5)

	// Student and course
	setFace(56)
	dc.SetHexColor("#2C2C2C")
	dc.DrawStringAnchored(data.StudentName, certWidth/2, 440, 0.5, 0.5)
	setFace(34)
	dc.DrawStringAnchored("успешно завершил(а) курс", certWidth/2, 540, 0.5, 0.5)
	setFace(48)
	dc.SetHexColor("#1F3C5D")
	dc.DrawStringAnchored(fmt.Sprintf("«%s»", data.CourseTitle), certWidth/2, 640, 0.5, 0.5)

	// Duration and completion date
	setFace(30)
	dc.SetHexColor("#2C2C2C")
	dc.DrawStringAnchored("Продолжительность курса: "+data.Duration, certWidth/2, 740, 0.5, 0.5)
	dc.DrawStringAnchored("Дата завершения: "+data.Date, certWidth/2, 795, 0.5, 0.5)

	// Signature blocks
	dc.SetHexColor("#1F3C5D")
	dc.SetLineWidth(2)
	dc.DrawLine(260, 1010, 640, 1010)
	dc.Stroke()
	dc.DrawLine(certWidth-640, 1010, certWidth-260, 1010)
	dc.Stroke()
	setFace(26)
	dc.DrawStringAnchored("Руководитель программы", 450, 1050, 0.5, 0.5)
	dc.DrawStringAnchored("Куратор курса", certWidth-450, 1050, 0.5, 0.5)

	// Certificate number
	setFace(24)
	dc.SetHexColor("#8A8A8A")
	dc.DrawStringAnchored(data.Number, certWidth/2, certHeight-105, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
