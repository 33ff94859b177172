// Package configs provides configuration structures and utilities for SnapCodec.
// This file implements Viper-backed loading with hot reload: when the
// configuration file changes on disk, the codec, history, and HTTP sections
// are re-read, validated, and pushed to subscribers so a running server can
// retune its serialization settings without a restart.
//
// Package configs 提供SnapCodec的配置结构和工具。
// 本文件实现基于Viper的加载与热重载：当磁盘上的配置文件变化时，
// 编解码器、历史和HTTP各节会被重新读取、验证并推送给订阅者，
// 使运行中的服务器无需重启即可调整其序列化设置。
package configs

import (
	"fmt"
	"log"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ViperConfig couples a validated Config with the Viper instance it was
// read from, so the same file can be re-read on change notifications.
// Access to the embedded Config and the subscriber list is guarded for
// concurrent use.
//
// ViperConfig 将已验证的Config与读取它的Viper实例耦合，
// 使同一文件能在变更通知时被重新读取。
// 对内嵌Config和订阅者列表的访问受并发保护。
type ViperConfig struct {
	viper       *viper.Viper
	configFile  string
	mu          sync.RWMutex
	current     *Config
	subscribers []func(*Config)
}

// NewViperConfig reads and validates the configuration file. The file
// format is derived from its extension, as LoadFromFile does.
//
// NewViperConfig 读取并验证配置文件。文件格式由扩展名推导，
// 与LoadFromFile一致。
//
// Parameters:
//   - configFile: Path to the configuration file
//
// Returns:
//   - *ViperConfig: The loaded configuration, ready for hot reload
//   - error: An error if reading or validation fails
//
// 参数：
//   - configFile: 配置文件的路径
//
// 返回：
//   - *ViperConfig: 已加载的配置，可启用热重载
//   - error: 如果读取或验证失败则返回错误
func NewViperConfig(configFile string) (*ViperConfig, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType(strings.TrimPrefix(filepath.Ext(configFile), "."))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := decodeViper(v)
	if err != nil {
		return nil, err
	}

	return &ViperConfig{
		viper:      v,
		configFile: configFile,
		current:    config,
	}, nil
}

// decodeViper unmarshals the Viper state over the defaults and validates
// the result. A config that fails validation is never handed out.
//
// decodeViper 在默认值之上解析Viper状态并验证结果。
// 验证失败的配置绝不会被交出。
func decodeViper(v *viper.Viper) (*Config, error) {
	config := DefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// EnableHotReload starts watching the configuration file. On each change
// the file is re-read; if the new configuration is valid and differs from
// the current one, it is swapped in and every subscriber is notified.
// Invalid edits are logged and ignored, keeping the last good configuration
// in effect.
//
// EnableHotReload 开始监视配置文件。每次变更都会重新读取文件；
// 新配置有效且与当前不同时会被换入，并通知每个订阅者。
// 无效的编辑被记录并忽略，上一个有效配置继续生效。
func (vc *ViperConfig) EnableHotReload() {
	vc.viper.WatchConfig()
	vc.viper.OnConfigChange(func(e fsnotify.Event) {
		newConfig, err := decodeViper(vc.viper)
		if err != nil {
			log.Printf("Ignoring config change in %s: %v", e.Name, err)
			return
		}

		if vc.notify(newConfig) {
			log.Printf("Config file changed: %s", e.Name)
		}
	})
}

// notify swaps in newConfig and calls every subscriber with it. It reports
// whether the configuration actually changed; unchanged snapshots are
// dropped without notification.
//
// notify 换入newConfig并以其调用每个订阅者。它报告配置是否确实发生了
// 变化；未变化的快照被丢弃且不通知。
func (vc *ViperConfig) notify(newConfig *Config) bool {
	vc.mu.Lock()
	if configsEqual(vc.current, newConfig) {
		vc.mu.Unlock()
		return false
	}
	vc.current = newConfig
	subscribers := make([]func(*Config), len(vc.subscribers))
	copy(subscribers, vc.subscribers)
	vc.mu.Unlock()

	for _, subscriber := range subscribers {
		subscriber(newConfig)
	}
	return true
}

// Subscribe registers a callback invoked with each accepted configuration
// change. The callback runs on the watcher goroutine and must not block.
//
// Subscribe 注册一个回调，在每次被接受的配置变更时调用。
// 回调在监视协程上运行，不得阻塞。
func (vc *ViperConfig) Subscribe(subscriber func(*Config)) {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.subscribers = append(vc.subscribers, subscriber)
}

// Get returns the current configuration. The returned value must be treated
// as read-only; a reload replaces it wholesale rather than mutating it.
//
// Get 返回当前配置。返回值必须视为只读；
// 重载会整体替换它而不是就地修改。
func (vc *ViperConfig) Get() *Config {
	vc.mu.RLock()
	defer vc.mu.RUnlock()
	return vc.current
}

// LoadViperConfig loads a configuration file and optionally starts watching
// it for changes.
//
// LoadViperConfig 加载配置文件，并可选地开始监视其变更。
//
// Parameters:
//   - configFile: Path to the configuration file
//   - enableHotReload: Whether to watch the file for changes
//
// Returns:
//   - *ViperConfig: The loaded configuration
//   - error: An error if loading fails
//
// 参数：
//   - configFile: 配置文件的路径
//   - enableHotReload: 是否监视文件变更
//
// 返回：
//   - *ViperConfig: 已加载的配置
//   - error: 如果加载失败则返回错误
func LoadViperConfig(configFile string, enableHotReload bool) (*ViperConfig, error) {
	vc, err := NewViperConfig(configFile)
	if err != nil {
		return nil, err
	}
	if enableHotReload {
		vc.EnableHotReload()
	}
	return vc, nil
}

// configsEqual reports whether two configurations are structurally equal.
// It is used to suppress subscriber notifications for file events that did
// not change any effective setting.
//
// configsEqual 报告两个配置是否结构相等。
// 用于抑制未改变任何有效设置的文件事件的订阅者通知。
func configsEqual(c1, c2 *Config) bool {
	return reflect.DeepEqual(c1, c2)
}
