package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/IVA-book-reconciler/internal/config"
)

func TestFromConfig(t *testing.T) {
	v, err := FromConfig(config.ValidatorConfig{Provider: ProviderAFIP, BaseURL: "https://afip.example.com", ChunkSize: 50}, nil)
	require.NoError(t, err)
	client, ok := v.(*AFIPClient)
	require.True(t, ok)
	assert.Equal(t, 50, client.opts.ChunkSize)
	assert.Equal(t, DefaultErrorKeys, client.opts.ErrorKeys)

	v, err = FromConfig(config.ValidatorConfig{Provider: ProviderAFIP}, nil)
	require.NoError(t, err)
	assert.IsType(t, NoopValidator{}, v)

	v, err = FromConfig(config.ValidatorConfig{Provider: ProviderChecksum}, nil)
	require.NoError(t, err)
	assert.IsType(t, ChecksumValidator{}, v)

	v, err = FromConfig(config.ValidatorConfig{Provider: ProviderNone}, nil)
	require.NoError(t, err)
	assert.IsType(t, NoopValidator{}, v)

	_, err = FromConfig(config.ValidatorConfig{Provider: "padron"}, nil)
	assert.Error(t, err)
}

func TestFromConfig_ProviderList(t *testing.T) {
	v, err := FromConfig(config.ValidatorConfig{Provider: "afip, checksum", BaseURL: "https://afip.example.com"}, nil)
	require.NoError(t, err)
	chain, ok := v.(Chain)
	require.True(t, ok)
	require.Len(t, chain, 2)
	assert.IsType(t, &AFIPClient{}, chain[0])
	assert.IsType(t, ChecksumValidator{}, chain[1])

	// An unreachable AFIP service leaves the checksum alone.
	v, err = FromConfig(config.ValidatorConfig{Provider: "afip,checksum"}, nil)
	require.NoError(t, err)
	assert.IsType(t, ChecksumValidator{}, v)

	v, err = FromConfig(config.ValidatorConfig{Provider: "none,none"}, nil)
	require.NoError(t, err)
	assert.IsType(t, NoopValidator{}, v)

	_, err = FromConfig(config.ValidatorConfig{Provider: "checksum,padron"}, nil)
	assert.Error(t, err)
}

func TestFromConfig_ChainFlagsUnion(t *testing.T) {
	v, err := FromConfig(config.ValidatorConfig{Provider: "checksum,checksum"}, nil)
	require.NoError(t, err)

	flagged, err := v.Validate(context.Background(), []int64{20123456786, 30111222334, 123})
	require.NoError(t, err)
	assert.Equal(t, []string{"30111222334", "123"}, flagged)
}
