package forecast

// Emote is the themed character shown next to a temperature.
type Emote struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImagePath   string    `json:"image_path"`
	Band        ThemeBand `json:"band"`
}

var emotes = []Emote{
	{"Braum Tiritando", "¡Hace mucho frío, amigo!", "emotes/braum_cold.png", BandFreezing},
	{"Poro Congelado", "Brrr... necesito una bufanda", "emotes/poro_frozen.png", BandFreezing},
	{"Anivia Helada", "Incluso yo tengo frío", "emotes/anivia_frozen.png", BandFreezing},

	{"Ashe Preparada", "Fresco, pero controlable", "emotes/ashe_cool.png", BandCold},
	{"Sejuani Montando", "Perfecto para cabalgar", "emotes/sejuani_riding.png", BandCold},

	{"Garen Aprobando", "Día perfecto para entrenar", "emotes/garen_thumbsup.png", BandCool},
	{"Lux Brillante", "¡Qué día tan bonito!", "emotes/lux_happy.png", BandCool},

	{"Thumbs Up Clásico", "¡Temperatura perfecta!", "emotes/classic_thumbsup.png", BandComfortable},
	{"Ezreal Confiado", "Día ideal para explorar", "emotes/ezreal_confident.png", BandComfortable},
	{"Ahri Sonriendo", "Me encanta este clima", "emotes/ahri_smile.png", BandComfortable},
	{"Yasuo Zen", "En perfecta armonía", "emotes/yasuo_zen.png", BandComfortable},

	{"Jinx Sudando", "Empiezo a sudar un poquito...", "emotes/jinx_sweating.png", BandWarm},
	{"Vi Quitándose Guantes", "Hace calorcito, ¿eh?", "emotes/vi_warm.png", BandWarm},

	{"Teemo Agobiado", "¡Demasiado calor para mí!", "emotes/teemo_hot.png", BandHot},
	{"Ziggs Explosivo", "¡Esto está que arde!", "emotes/ziggs_hot.png", BandHot},
	{"Graves Sudoroso", "Necesito una cerveza fría", "emotes/graves_sweating.png", BandHot},

	{"Brand Derritiéndose", "Incluso yo me derrito", "emotes/brand_melting.png", BandScorching},
	{"Auxilio Total", "¡AUXILIO, ME ASO!", "emotes/help_melting.png", BandScorching},
	{"Azir Desesperado", "¡Y yo que pensaba que el desierto era caliente!", "emotes/azir_desperate.png", BandScorching},
	{"Annie Sofocada", "Ni mis llamas son tan intensas", "emotes/annie_overwhelmed.png", BandScorching},
}

// AllEmotes returns every emote in band order.
func AllEmotes() []Emote {
	out := make([]Emote, len(emotes))
	copy(out, emotes)
	return out
}

// EmotesFor returns the emote pool of a band.
func EmotesFor(b ThemeBand) []Emote {
	var out []Emote
	for _, e := range emotes {
		if e.Band == b {
			out = append(out, e)
		}
	}
	return out
}

// EmoteFor resolves the band for temp, then lets c pick within its pool.
func EmoteFor(temp float64, c Chooser[Emote]) Emote {
	pool := EmotesFor(BandFor(temp))
	if len(pool) == 0 {
		pool = EmotesFor(BandComfortable)
	}
	return c.Pick(pool)
}
