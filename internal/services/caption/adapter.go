package caption

import (
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/models"
)

// defaultColor is applied when a provider record carries no color
const defaultColor = "#ffffff"

// RawRecord is one provider caption tuple in fixed order:
// (time, position, color, font-size-hint, text). Field types vary by
// provider, so each element stays untyped until coercion.
type RawRecord []interface{}

// laneForPosition maps provider position tags to overlay lanes. Unknown
// tags fall back to the scrolling lane.
func laneForPosition(position string) models.Lane {
	switch position {
	case "top":
		return models.LaneTop
	case "bottom":
		return models.LaneBottom
	case "right":
		return models.LaneScroll
	default:
		return models.LaneScroll
	}
}

// ConvertRecords normalizes provider tuples into overlay cues. Records
// that are not tuples of at least 5 elements are dropped; a malformed
// single record never aborts the batch. Time and text are coerced with
// 0/"" fallbacks, color defaults to white.
func ConvertRecords(records []RawRecord, logger *logrus.Logger) []models.CaptionCue {
	cues := make([]models.CaptionCue, 0, len(records))
	dropped := 0

	for _, record := range records {
		if len(record) < 5 {
			dropped++
			continue
		}

		cue := models.CaptionCue{
			Time:  coerceFloat(record[0]),
			Lane:  laneForPosition(coerceString(record[1])),
			Color: coerceString(record[2]),
			Text:  coerceString(record[4]),
		}
		if cue.Color == "" {
			cue.Color = defaultColor
		}

		cues = append(cues, cue)
	}

	if dropped > 0 {
		logger.WithField("dropped", dropped).Debug("Dropped malformed caption records")
	}

	return cues
}

// coerceFloat converts a provider value to a float64, falling back to 0
func coerceFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f
		}
	}
	return 0
}

// coerceString converts a provider value to a string, falling back to ""
func coerceString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}
