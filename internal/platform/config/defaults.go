package config

import "time"

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 5000,
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			StaticDir: "./web",
		},
		Audio: AudioConfig{
			Dir:              "static",
			RetentionSeconds: 3600,
			MaxFiles:         10,
		},
		Results: ResultsConfig{
			BaseURL:  "https://www.thesportsdb.com/api/v1/json",
			APIKey:   "123",
			Timeout:  10 * time.Second,
			MaxGames: 5,
		},
		LLM: LLMConfig{
			Provider:  "groq",
			BaseURL:   "https://api.groq.com/openai/v1",
			ModelName: "llama3-8b-8192",
			Timeout:   30 * time.Second,
		},
		TTS: TTSConfig{
			ElevenLabs: ElevenLabsConfig{
				BaseURL:         "https://api.elevenlabs.io/v1",
				ModelID:         "eleven_monolingual_v1",
				Stability:       0.5,
				SimilarityBoost: 0.5,
				Voices: VoiceTable{
					"Ravi Shastri": {
						"English": "voice_id_ravi_english",
						"Hindi":   "voice_id_ravi_hindi",
						"Spanish": "voice_id_ravi_spanish",
					},
					"Harsha Bhogle": {
						"English": "voice_id_harsha_english",
						"Hindi":   "voice_id_harsha_hindi",
						"Spanish": "voice_id_harsha_spanish",
					},
					"Tony Romo": {
						"English": "voice_id_tony_english",
						"Hindi":   "voice_id_tony_hindi",
						"Spanish": "voice_id_tony_spanish",
					},
				},
			},
			Azure: AzureConfig{
				OutputFormat: "audio-24khz-48kbitrate-mono-mp3",
				Voices: VoiceTable{
					"Ravi Shastri": {
						"English": "en-IN-NeerjaNeural",
						"Hindi":   "hi-IN-SwaraNeural",
						"Spanish": "es-MX-JorgeNeural",
					},
					"Harsha Bhogle": {
						"English": "en-IN-PrabhatNeural",
						"Hindi":   "hi-IN-MadhurNeural",
						"Spanish": "es-MX-YagoNeural",
					},
					"Tony Romo": {
						"English": "en-US-JennyNeural",
						"Hindi":   "hi-IN-SwaraNeural",
						"Spanish": "es-MX-JorgeNeural",
					},
				},
			},
			Edge: EdgeConfig{
				Voices: map[string]GenericVoice{
					"English": {Lang: "en", Accent: "en-US-GuyNeural"},
					"Hindi":   {Lang: "hi", Accent: "hi-IN-MadhurNeural"},
					"Spanish": {Lang: "es", Accent: "es-ES-AlvaroNeural"},
				},
				Default: GenericVoice{Lang: "en", Accent: "en-US-GuyNeural"},
				Rate:    "+0%",
				Volume:  "+0%",
				Pitch:   "+0Hz",
			},
		},
		Commentary: CommentaryConfig{
			DefaultCommentator: "Ravi Shastri",
			DefaultLanguage:    "English",
			Personas: []Persona{
				{Name: "Ravi Shastri", Descriptor: "known for booming, larger-than-life commentary packed with punchy one-liners"},
				{Name: "Harsha Bhogle", Descriptor: "known for eloquent, insightful and gently witty analysis"},
				{Name: "Tony Romo", Descriptor: "known for high-energy enthusiasm and calling the play before it happens"},
			},
			Languages: []string{"English", "Hindi", "Spanish"},
			Teams: map[string]string{
				"134860": "Boston Celtics",
				"133602": "Liverpool",
				"133604": "Arsenal",
			},
		},
	}
}
