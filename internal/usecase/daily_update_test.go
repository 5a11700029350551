package usecase

import "testing"

func TestValidateAttachment(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		mimeType string
		size     int64
		wantErr  bool
	}{
		{"pdf ok", "report.pdf", "application/pdf", 1024, false},
		{"png ok", "chart.png", "image/png", 2048, false},
		{"uppercase extension", "SCAN.PDF", "application/pdf", 1024, false},
		{"xlsx ok", "budget.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", 4096, false},
		{"at size cap", "big.pdf", "application/pdf", MaxAttachmentSize, false},
		{"over size cap", "huge.pdf", "application/pdf", MaxAttachmentSize + 1, true},
		{"empty file", "empty.pdf", "application/pdf", 0, true},
		{"executable", "virus.exe", "application/octet-stream", 1024, true},
		{"no extension", "README", "text/plain", 1024, true},
		{"mismatched mime", "photo.png", "application/x-msdownload", 1024, true},
		{"arabic file name", "تقرير.pdf", "application/pdf", 1024, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAttachment(tt.fileName, tt.mimeType, tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAttachment(%q, %q, %d) error = %v, wantErr %v",
					tt.fileName, tt.mimeType, tt.size, err, tt.wantErr)
			}
		})
	}
}
