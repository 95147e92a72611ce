/*
【ファイル概要: config.go】
Config は association 一つ分の振る舞いを決めるパラメータ集合です。
mapstructure タグを付け、外部の設定ローダー（例えば spf13/viper）が
そのままデコードできる形にしています（このモジュール自体は設定
ファイルを読みません — タグは他コードとの契約です）。
*/
package association

import "time"

// Config enumerates every association-level tunable.
type Config struct {
	MTU int `mapstructure:"mtu"`

	RTOInitial time.Duration `mapstructure:"rto_initial"`
	RTOMin     time.Duration `mapstructure:"rto_min"`
	RTOMax     time.Duration `mapstructure:"rto_max"`

	MaxInitRetransmits  int `mapstructure:"max_init_retransmits"`
	MaxAssocRetransmits int `mapstructure:"max_assoc_retransmits"`
	MaxPathRetransmits  int `mapstructure:"max_path_retransmits"`

	DelayedAckTimeout time.Duration `mapstructure:"delayed_ack_ms"`

	AcceptQueueCapacity int `mapstructure:"accept_queue_capacity"`
	RecvBufferBytes     int `mapstructure:"recv_buffer_bytes"`

	// CookieLifetime bounds how long a minted state cookie remains
	// valid for COOKIE-ECHO (RFC 4960 §5.1.3).
	CookieLifetime time.Duration `mapstructure:"cookie_lifetime"`
}

// DefaultConfig returns the RFC 4960 §15 default timer values and
// reasonable defaults for the rest.
func DefaultConfig() Config {
	return Config{
		MTU:                 1200,
		RTOInitial:          3 * time.Second,
		RTOMin:              1 * time.Second,
		RTOMax:              60 * time.Second,
		MaxInitRetransmits:  8,
		MaxAssocRetransmits: 10,
		MaxPathRetransmits:  5,
		DelayedAckTimeout:   200 * time.Millisecond,
		AcceptQueueCapacity: 16,
		RecvBufferBytes:     1 << 20,
		CookieLifetime:      60 * time.Second,
	}
}
