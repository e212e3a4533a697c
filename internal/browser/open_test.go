package browser

import "testing"

func TestCheck(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"https://q.qlogo.cn/g?b=qq&nk=10001&s=640", false},
		{"http://example.com/a.png", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"-a /bin/sh", true},
		{"https://", true},
		{"", true},
	}
	for _, tt := range tests {
		err := Check(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("Check(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
	}
}
