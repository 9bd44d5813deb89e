package i18n_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/pf2-flat-check/internal/i18n"
)

func TestLoadEmbedded_HasExpectedLocales(t *testing.T) {
	b, err := i18n.LoadEmbedded()
	require.NoError(t, err)
	assert.Equal(t, []string{"en-US", "de-DE"}, b.Locales())
}

func TestPrinter_Localizes(t *testing.T) {
	b, err := i18n.LoadEmbedded()
	require.NoError(t, err)

	en := b.Printer("en-US")
	assert.Equal(t, "Success", en.Sprintf(i18n.KeySuccess))
	assert.Equal(t, "Flat Check DC 11", en.Sprintf(i18n.KeyTitle, 11))

	de := b.Printer("de-DE")
	assert.Equal(t, "Fehlschlag", de.Sprintf(i18n.KeyFailure))
	assert.Equal(t, "Pauschaler Wurf SG 5", de.Sprintf(i18n.KeyTitle, 5))
}

func TestMatch_RegionalVariantAndFallback(t *testing.T) {
	b, err := i18n.LoadEmbedded()
	require.NoError(t, err)

	assert.Equal(t, "de-DE", b.Match("de-AT").String())
	assert.Equal(t, "en-US", b.Match("en-GB").String())
	assert.Equal(t, "en-US", b.Match("ja-JP").String())
	assert.Equal(t, "en-US", b.Match("not a locale").String())
	assert.Equal(t, "en-US", b.Match("").String())
}

func TestLoadFromFS_RequiresBaseLocale(t *testing.T) {
	fsys := fstest.MapFS{
		"de-DE.yaml": {Data: []byte("locale: de-DE\nmessages:\n  a: b\n")},
	}
	_, err := i18n.LoadFromFS(fsys)
	assert.ErrorContains(t, err, "base locale")
}

func TestLoadFromFS_LocaleMustMatchFileName(t *testing.T) {
	fsys := fstest.MapFS{
		"en-US.yaml": {Data: []byte("locale: fr-FR\nmessages:\n  a: b\n")},
	}
	_, err := i18n.LoadFromFS(fsys)
	assert.ErrorContains(t, err, "must match file name")
}

func TestLoadFromFS_RejectsUnknownFields(t *testing.T) {
	fsys := fstest.MapFS{
		"en-US.yaml": {Data: []byte("locale: en-US\nmessages:\n  a: b\nextra: 1\n")},
	}
	_, err := i18n.LoadFromFS(fsys)
	assert.Error(t, err)
}

func TestLoadFromFS_Empty(t *testing.T) {
	_, err := i18n.LoadFromFS(fstest.MapFS{})
	assert.ErrorContains(t, err, "no catalog files")
}
