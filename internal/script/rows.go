package script

import "dialogvec/internal/domain"

// BuildRows derives one TrainingRow per line. Context stops at scene
// boundaries: the first line of a scene has no previous line or speakers, the
// first two have no two-back speaker and the last has no next line.
func BuildRows(scenes []domain.Scene) []domain.TrainingRow {
	var rows []domain.TrainingRow
	for _, scene := range scenes {
		for i, l := range scene {
			row := domain.TrainingRow{
				CurrentLine:    l.Line,
				CurrentSpeaker: l.Speaker,
			}
			if i > 0 {
				row.PreviousLine = scene[i-1].Line
				row.PreviousSpeaker = scene[i-1].Speaker
			}
			if i > 1 {
				row.TwoBackSpeaker = scene[i-2].Speaker
			}
			if i+1 < len(scene) {
				row.NextLine = scene[i+1].Line
			}
			rows = append(rows, row)
		}
	}
	return rows
}
