package kafka_config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, DefaultProducerCompression, cfg.ProducerCompression)
	assert.Equal(t, DefaultProducerWriteTimeout, cfg.ProducerWriteTimeout)
}

func TestLoad_Brokers(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv(EnvKafkaProducerBatchTimeout, "50ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	assert.Equal(t, 50*time.Millisecond, cfg.ProducerBatchTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"compression", EnvKafkaProducerCompression, "brotli", "ProducerCompression"},
		{"acks", EnvKafkaProducerRequireAcks, "2", "ProducerRequireAcks"},
		{"attempts", EnvKafkaProducerMaxAttempts, "0", "ProducerMaxAttempts"},
		{"brokers", EnvKafkaBrokers, " , ", "At least one Kafka broker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
