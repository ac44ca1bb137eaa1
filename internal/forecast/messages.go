package forecast

import (
	"math/rand/v2"
	"sync"
)

// Chooser picks one element from a pool. Pools are never empty when called
// from this package.
type Chooser[T any] interface {
	Pick(pool []T) T
}

// RandomChooser picks uniformly at random.
type RandomChooser[T any] struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomChooser returns a chooser seeded from the runtime source, or from
// seed when it is non-zero.
func NewRandomChooser[T any](seed uint64) *RandomChooser[T] {
	if seed == 0 {
		return &RandomChooser[T]{}
	}
	return &RandomChooser[T]{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (c *RandomChooser[T]) Pick(pool []T) T {
	if c.rng == nil {
		return pool[rand.IntN(len(pool))]
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return pool[c.rng.IntN(len(pool))]
}

// FirstChooser always picks the first element.
type FirstChooser[T any] struct{}

func (FirstChooser[T]) Pick(pool []T) T { return pool[0] }

// MessageKind selects which message pool to draw from.
type MessageKind int

const (
	MessageAny MessageKind = iota
	MessageEco
	MessageMotivational
)

// The first three entries of each pool are motivational, the rest eco.
var bandMessages = map[ThemeBand][]string{
	BandFreezing: {
		"Es día de chocolate calentito ☕",
		"Te recomiendo una buena peli y manta 🛋️",
		"Que el viento helado refresque tus ideas y te inspire a tener un gran día ❄️",
		"El frío nos recuerda que la Tierra también necesita descansar 🌍",
		"Aprovecha para reducir tu huella de carbono: menos aire acondicionado 💚",
		"Cada grado importa: apreciemos estos momentos naturales 🌿",
	},
	BandCold: {
		"Si no tuviéramos invierno, la primavera no resultaría tan agradable 🌸",
		"El frío nos conecta con la naturaleza en su estado más puro 🍃",
		"Cada paso que das hoy cuida el planeta 🌱",
		"Aprovecha para usar ropa abrigada y ahorrar energía en casa ⚡",
		"Un día perfecto para caminar y reducir las emisiones de tu vehículo 🚶‍♀️",
		"La naturaleza se regenera en el frío, igual que tu energía ♻️",
	},
	BandCool: {
		"Recuerda tus 15 minutos de sol ☀️",
		"Con el buen tiempo aprovecha para pasear y despejarte 🚶",
		"La temperatura perfecta para conectar con la naturaleza 🌳",
		"Un día ideal para usar bicicleta y cuidar el medio ambiente 🚲",
		"La brisa natural es el mejor aire acondicionado 🍃",
		"Aprovecha para plantar algo verde hoy 🌱",
	},
	BandComfortable: {
		"Temperatura perfecta para dar un buen paseo 🚶‍♂️",
		"El clima ideal existe, y es hoy 🌈",
		"Aprovecha este regalo de la naturaleza 🎁",
		"Día perfecto para actividades al aire libre sin impacto ambiental 🌿",
		"La temperatura ideal para secar ropa al sol y ahorrar energía ☀️",
		"El equilibrio perfecto: ni calefacción ni refrigeración necesaria ⚖️",
	},
	BandWarm: {
		"Por favor, recuerda mantenerte hidratado 💧",
		"Con este calor es recomendable planes de agua 🏊‍♀️",
		"Aprovecha las sombras naturales que nos regalan los árboles 🌳",
		"Reduce el uso de aire acondicionado y abrete a la ventilación natural 🌬️",
		"Los pueblos costeros tienen la solución natural al calor 🌊",
		"Hidrata tu cuerpo y también tus plantas 🌸",
	},
	BandHot: {
		"Busca la sombra y cuida tu piel del sol ☂️",
		"Momento perfecto para apreciar los espacios con aire natural 🌳",
		"Hidratación constante: tu cuerpo y el planeta lo agradecen 💧",
		"El calor nos recuerda la importancia de proteger el clima 🌍",
		"Cada acción eco-friendly suma para reducir estas temperaturas 💚",
		"Los árboles son nuestros mejores aliados contra el calor 🌲",
	},
	BandScorching: {
		"Busca refugio y mantente seguro/a 🏠",
		"Protégete y protege el medio ambiente para las próximas generaciones 👨‍👩‍👧‍👦",
		"El calor extremo es un recordatorio de cuidar nuestro hogar común 🏡",
		"Estas temperaturas nos recuerdan que el planeta necesita nuestra ayuda 🆘",
		"Cada grado de más es una llamada de atención de la Tierra 🌍",
		"El futuro del planeta está en nuestras acciones de hoy 🔮",
	},
}

const motivationalCount = 3

// Messages returns the message pool for a band and kind.
func Messages(b ThemeBand, kind MessageKind) []string {
	pool, ok := bandMessages[b]
	if !ok {
		pool = bandMessages[BandComfortable]
	}
	switch kind {
	case MessageMotivational:
		return pool[:motivationalCount]
	case MessageEco:
		return pool[motivationalCount:]
	default:
		return pool
	}
}

// MessageFor resolves the band for temp deterministically, then lets c pick.
func MessageFor(temp float64, kind MessageKind, c Chooser[string]) string {
	return c.Pick(Messages(BandFor(temp), kind))
}

// WindDescription describes a wind speed given in m/s, as the provider
// reports it with metric units. Thresholds are in km/h.
func WindDescription(speed float64) string {
	kmh := speed * 3.6
	switch {
	case kmh < 5:
		return "Calma"
	case kmh < 15:
		return "Brisa ligera"
	case kmh < 25:
		return "Brisa moderada"
	case kmh < 40:
		return "Viento fuerte"
	default:
		return "¡Ventolera épica!"
	}
}

// HumidityDescription describes a relative humidity percentage.
func HumidityDescription(humidity int) string {
	switch {
	case humidity < 30:
		return "Muy seco"
	case humidity < 50:
		return "Seco"
	case humidity < 70:
		return "Cómodo"
	case humidity < 85:
		return "Húmedo"
	default:
		return "Muy húmedo"
	}
}

// FeelsLikeDescription compares the apparent temperature with the actual one.
func FeelsLikeDescription(actual, feelsLike float64) string {
	diff := feelsLike - actual
	switch {
	case diff > 5:
		return "Se siente más caluroso"
	case diff > 2:
		return "Se siente un poco más cálido"
	case diff < -5:
		return "Se siente más frío"
	case diff < -2:
		return "Se siente un poco más frío"
	default:
		return "Se siente similar"
	}
}
