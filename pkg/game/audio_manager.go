package game

import (
	"encoding/binary"
	"log"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/hajimehoshi/ebiten/v2/audio"
)

// 音效ID
const (
	SoundPieceInstalled = "piece_installed"
	SoundBuildComplete  = "build_complete"
	SoundInterrupted    = "interrupted"
)

// AudioSampleRate 音频上下文采样率
const AudioSampleRate = 48000

// toneSpec 合成音效参数
type toneSpec struct {
	freq     float64 // 基频（Hz）
	duration float64 // 时长（秒）
	decay    float64 // 指数衰减系数，越大越短促
}

var toneSpecs = map[string]toneSpec{
	SoundPieceInstalled: {freq: 880, duration: 0.08, decay: 40},
	SoundBuildComplete:  {freq: 523.25, duration: 0.5, decay: 6},
	SoundInterrupted:    {freq: 220, duration: 0.15, decay: 20},
}

// AudioManager 音频管理器
// 职责：
//   - 在启动时合成所有音效（没有外部音频资源）
//   - 提供按音效ID播放的便捷接口
//   - 统一控制音量和静音
type AudioManager struct {
	context *audio.Context
	pcm     map[string][]byte // 音效ID -> 16 位立体声 PCM
	volume  float64
	muted   bool
}

// NewAudioManager 创建新的音频管理器
//
// 参数：
//   - ctx: ebiten 音频上下文，可为 nil（静音模式，PlaySound 总是返回 false）
//
// 返回：
//   - *AudioManager: 音频管理器实例
func NewAudioManager(ctx *audio.Context) *AudioManager {
	am := &AudioManager{
		context: ctx,
		pcm:     make(map[string][]byte, len(toneSpecs)),
		volume:  0.6,
	}
	for id, spec := range toneSpecs {
		am.pcm[id] = SynthesizeTone(AudioSampleRate, spec.freq, spec.duration, spec.decay)
	}
	return am
}

// PlaySound 播放音效
//
// 返回：
//   - bool: 是否成功播放
func (am *AudioManager) PlaySound(soundID string) bool {
	if am.context == nil || am.muted {
		return false
	}
	data, ok := am.pcm[soundID]
	if !ok {
		log.Printf("[AudioManager] Unknown sound: %s", soundID)
		return false
	}

	player := am.context.NewPlayerFromBytes(data)
	player.SetVolume(am.volume)
	player.Play()
	return true
}

// SetVolume 设置音量（0.0 ~ 1.0）
func (am *AudioManager) SetVolume(volume float64) {
	am.volume = math.Max(0, math.Min(1, volume))
}

// GetVolume 返回当前音量
func (am *AudioManager) GetVolume() float64 {
	return am.volume
}

// SetMuted 设置静音
func (am *AudioManager) SetMuted(muted bool) {
	am.muted = muted
}

// IsMuted 是否静音
func (am *AudioManager) IsMuted() bool {
	return am.muted
}

// toneAmplitude 合成音效的峰值幅度，留出余量避免多个音效叠加时削波
const toneAmplitude = 0.8

// SynthesizeTone 合成一段带指数衰减的正弦波
//
// 正弦由 beep 生成器产生，经衰减包络和音量效果后截取 duration 秒，
// 再打包成 ebiten audio 需要的格式：16 位有符号小端、立体声交错。
//
// 返回：
//   - []byte: PCM 数据，长度 = 采样数 * 4；时长为 0 或频率超出范围时返回 nil
func SynthesizeTone(sampleRate int, freq, duration, decay float64) []byte {
	sr := beep.SampleRate(sampleRate)
	samples := sr.N(time.Duration(duration * float64(time.Second)))
	if samples <= 0 {
		return nil
	}
	sine, err := generators.SineTone(sr, freq)
	if err != nil {
		log.Printf("[AudioManager] Cannot synthesize %.1f Hz tone: %v", freq, err)
		return nil
	}

	tone := beep.Take(samples, &effects.Volume{
		Streamer: withDecay(sine, sr, decay),
		Base:     2,
		Volume:   math.Log2(toneAmplitude),
	})

	out := make([]byte, 0, samples*4)
	buf := make([][2]float64, 512)
	for {
		n, ok := tone.Stream(buf)
		for _, frame := range buf[:n] {
			out = appendPCM16(out, frame[0])
			out = appendPCM16(out, frame[1])
		}
		if !ok || n == 0 {
			break
		}
	}
	return out
}

// withDecay 给音源套上 exp(-decay*t) 的衰减包络
func withDecay(s beep.Streamer, sr beep.SampleRate, decay float64) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := range samples[:n] {
			g := math.Exp(-decay * float64(pos) / float64(sr))
			samples[i][0] *= g
			samples[i][1] *= g
			pos++
		}
		return n, ok
	})
}

// appendPCM16 把 [-1, 1] 的采样追加为 16 位小端整数
func appendPCM16(out []byte, v float64) []byte {
	v = math.Max(-1, math.Min(1, v))
	return binary.LittleEndian.AppendUint16(out, uint16(int16(v*math.MaxInt16)))
}
