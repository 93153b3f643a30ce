package game

import (
	"encoding/binary"
	"testing"
)

// TestSynthesizeTone 测试合成 PCM 的长度与衰减
func TestSynthesizeTone(t *testing.T) {
	data := SynthesizeTone(48000, 440, 0.1, 10)
	if len(data) != 4800*4 {
		t.Fatalf("expected %d bytes, got %d", 4800*4, len(data))
	}

	peak := func(from, to int) int {
		m := 0
		for i := from; i < to; i++ {
			s := int(int16(binary.LittleEndian.Uint16(data[i*4:])))
			if s < 0 {
				s = -s
			}
			if s > m {
				m = s
			}
		}
		return m
	}
	head := peak(0, 480)
	tail := peak(4320, 4800)
	if head == 0 {
		t.Fatal("tone is silent")
	}
	if tail >= head {
		t.Errorf("tone should decay: head peak %d, tail peak %d", head, tail)
	}

	// 左右声道相同
	for i := 0; i < 4800; i += 97 {
		l := binary.LittleEndian.Uint16(data[i*4:])
		r := binary.LittleEndian.Uint16(data[i*4+2:])
		if l != r {
			t.Fatalf("sample %d: left %d != right %d", i, l, r)
		}
	}

	if SynthesizeTone(48000, 440, 0, 1) != nil {
		t.Error("zero duration should produce no data")
	}
	// 高于奈奎斯特频率的音调无法由正弦生成器产生
	if SynthesizeTone(48000, 30000, 0.1, 1) != nil {
		t.Error("tone above half the sample rate should produce no data")
	}
}

// TestAudioManagerWithoutContext 测试没有音频上下文时的静音模式
func TestAudioManagerWithoutContext(t *testing.T) {
	am := NewAudioManager(nil)

	for _, id := range []string{SoundPieceInstalled, SoundBuildComplete, SoundInterrupted} {
		if len(am.pcm[id]) == 0 {
			t.Errorf("sound %s was not synthesized", id)
		}
		if am.PlaySound(id) {
			t.Errorf("PlaySound(%s) should fail without an audio context", id)
		}
	}

	am.SetVolume(2)
	if am.GetVolume() != 1 {
		t.Errorf("volume should clamp to 1, got %v", am.GetVolume())
	}
	am.SetVolume(-1)
	if am.GetVolume() != 0 {
		t.Errorf("volume should clamp to 0, got %v", am.GetVolume())
	}

	am.SetMuted(true)
	if !am.IsMuted() {
		t.Error("SetMuted(true) not reflected by IsMuted")
	}
}
