package entity

import (
	"strings"
	"testing"

	"github.com/sing-box-orbit/sing-box-orbit-back/util/common"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestClientCreate_CheckValid(t *testing.T) {
	tests := []struct {
		name    string
		input   ClientCreate
		wantErr bool
	}{
		{"valid", ClientCreate{Username: "alice_01", ServerIds: []int{1}}, false},
		{"empty username", ClientCreate{Username: "", ServerIds: []int{1}}, true},
		{"too long", ClientCreate{Username: strings.Repeat("a", 65), ServerIds: []int{1}}, true},
		{"max length", ClientCreate{Username: strings.Repeat("a", 64), ServerIds: []int{1}}, false},
		{"bad chars", ClientCreate{Username: "al ice", ServerIds: []int{1}}, true},
		{"no servers", ClientCreate{Username: "bob"}, true},
		{"negative expiry", ClientCreate{Username: "bob", ServerIds: []int{1}, ExpiresAt: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.CheckValid()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, common.ErrCodeInvalidInput, common.GetErrorCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServerCreate_CheckValid(t *testing.T) {
	valid := ServerCreate{Name: "de-1", Url: "https://panel.example.com:2095", ApiToken: "t"}
	assert.NoError(t, valid.CheckValid())

	noScheme := valid
	noScheme.Url = "panel.example.com"
	assert.Error(t, noScheme.CheckValid())

	ftp := valid
	ftp.Url = "ftp://panel.example.com"
	assert.Error(t, ftp.CheckValid())

	noToken := valid
	noToken.ApiToken = "  "
	assert.Error(t, noToken.CheckValid())

	longName := valid
	longName.Name = strings.Repeat("n", 129)
	assert.Error(t, longName.CheckValid())
}

func TestServerUpdate_CheckValid(t *testing.T) {
	assert.NoError(t, (&ServerUpdate{}).CheckValid())
	assert.NoError(t, (&ServerUpdate{Location: strPtr("")}).CheckValid())
	assert.Error(t, (&ServerUpdate{Name: strPtr("")}).CheckValid())
	assert.Error(t, (&ServerUpdate{Url: strPtr("nope")}).CheckValid())
}

func TestTemplateInput_CheckValid(t *testing.T) {
	assert.Error(t, (&TemplateInput{}).CheckValid(true))
	assert.NoError(t, (&TemplateInput{}).CheckValid(false))
	assert.NoError(t, (&TemplateInput{Name: strPtr("basic"), AnnounceUrl: strPtr("")}).CheckValid(true))
	assert.Error(t, (&TemplateInput{AnnounceUrl: strPtr("not a url")}).CheckValid(false))

	negative := -1
	assert.Error(t, (&TemplateInput{UpdateInterval: &negative}).CheckValid(false))
}
