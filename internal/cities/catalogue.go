package cities

import "github.com/lolweather/lolweather/internal/models"

type entry struct {
	name     string
	country  string
	lat, lon float64
	popular  bool
}

var countryNames = map[string]string{
	"ES": "España",
	"FR": "Francia",
	"IT": "Italia",
	"GB": "Reino Unido",
	"DE": "Alemania",
	"NL": "Países Bajos",
	"US": "Estados Unidos",
	"JP": "Japón",
	"AU": "Australia",
	"CA": "Canadá",
	"MX": "México",
	"BR": "Brasil",
	"AR": "Argentina",
	"CN": "China",
	"HK": "Hong Kong",
	"IN": "India",
	"AE": "Emiratos Árabes Unidos",
}

var catalogue = []entry{
	{"Madrid", "ES", 40.4168, -3.7038, true},
	{"Barcelona", "ES", 41.3874, 2.1686, true},
	{"Sevilla", "ES", 37.3891, -5.9845, true},
	{"Valencia", "ES", 39.4699, -0.3763, true},
	{"Zaragoza", "ES", 41.6488, -0.8891, false},
	{"Málaga", "ES", 36.7213, -4.4214, false},
	{"Murcia", "ES", 37.9922, -1.1307, false},
	{"Palma", "ES", 39.5696, 2.6502, false},
	{"Las Palmas", "ES", 28.1235, -15.4363, false},
	{"Bilbao", "ES", 43.2630, -2.9350, true},
	{"Alicante", "ES", 38.3452, -0.4810, false},
	{"Córdoba", "ES", 37.8882, -4.7794, false},
	{"Valladolid", "ES", 41.6523, -4.7245, false},
	{"Vigo", "ES", 42.2406, -8.7207, false},
	{"Gijón", "ES", 43.5322, -5.6611, false},
	{"Granada", "ES", 37.1773, -3.5986, false},
	{"Vitoria", "ES", 42.8467, -2.6716, false},
	{"Santiago de Compostela", "ES", 42.8782, -8.5448, false},
	{"Pamplona", "ES", 42.8125, -1.6458, false},
	{"Toledo", "ES", 39.8628, -4.0273, false},

	{"Paris", "FR", 48.8566, 2.3522, true},
	{"Lyon", "FR", 45.7640, 4.8357, false},
	{"Marseille", "FR", 43.2965, 5.3698, false},
	{"Nice", "FR", 43.7102, 7.2620, false},
	{"Bordeaux", "FR", 44.8378, -0.5792, false},
	{"Toulouse", "FR", 43.6047, 1.4442, false},
	{"Cannes", "FR", 43.5528, 7.0174, false},

	{"Rome", "IT", 41.9028, 12.4964, true},
	{"Milan", "IT", 45.4642, 9.1900, false},
	{"Naples", "IT", 40.8518, 14.2681, false},
	{"Venice", "IT", 45.4408, 12.3155, false},
	{"Florence", "IT", 43.7696, 11.2558, false},
	{"Turin", "IT", 45.0703, 7.6869, false},

	{"London", "GB", 51.5072, -0.1276, true},
	{"Manchester", "GB", 53.4808, -2.2426, false},
	{"Birmingham", "GB", 52.4862, -1.8904, false},
	{"Liverpool", "GB", 53.4084, -2.9916, false},
	{"Edinburgh", "GB", 55.9533, -3.1883, false},
	{"Glasgow", "GB", 55.8642, -4.2518, false},

	{"Berlin", "DE", 52.5200, 13.4050, true},
	{"Munich", "DE", 48.1351, 11.5820, false},
	{"Hamburg", "DE", 53.5511, 9.9937, false},
	{"Cologne", "DE", 50.9375, 6.9603, false},
	{"Frankfurt", "DE", 50.1109, 8.6821, false},

	{"Amsterdam", "NL", 52.3676, 4.9041, true},

	{"New York", "US", 40.7128, -74.0060, true},
	{"Los Angeles", "US", 34.0522, -118.2437, true},
	{"Chicago", "US", 41.8781, -87.6298, false},
	{"Miami", "US", 25.7617, -80.1918, false},
	{"San Francisco", "US", 37.7749, -122.4194, false},
	{"Las Vegas", "US", 36.1699, -115.1398, false},
	{"Seattle", "US", 47.6062, -122.3321, false},
	{"Boston", "US", 42.3601, -71.0589, false},

	{"Tokyo", "JP", 35.6762, 139.6503, true},
	{"Osaka", "JP", 34.6937, 135.5023, false},
	{"Kyoto", "JP", 35.0116, 135.7681, false},
	{"Hiroshima", "JP", 34.3853, 132.4553, false},

	{"Sydney", "AU", -33.8688, 151.2093, true},
	{"Melbourne", "AU", -37.8136, 144.9631, false},
	{"Brisbane", "AU", -27.4698, 153.0251, false},
	{"Perth", "AU", -31.9523, 115.8613, false},

	{"Toronto", "CA", 43.6532, -79.3832, false},
	{"Vancouver", "CA", 49.2827, -123.1207, false},
	{"Montreal", "CA", 45.5019, -73.5674, false},

	{"Mexico City", "MX", 19.4326, -99.1332, false},
	{"Cancun", "MX", 21.1619, -86.8515, false},
	{"Guadalajara", "MX", 20.6597, -103.3496, false},

	{"Rio de Janeiro", "BR", -22.9068, -43.1729, false},
	{"São Paulo", "BR", -23.5558, -46.6396, false},
	{"Salvador", "BR", -12.9777, -38.5016, false},

	{"Buenos Aires", "AR", -34.6037, -58.3816, false},
	{"Córdoba", "AR", -31.4201, -64.1888, false},

	{"Beijing", "CN", 39.9042, 116.4074, false},
	{"Shanghai", "CN", 31.2304, 121.4737, false},
	{"Hong Kong", "HK", 22.3193, 114.1694, false},

	{"Mumbai", "IN", 19.0760, 72.8777, false},
	{"New Delhi", "IN", 28.6139, 77.2090, false},
	{"Bangalore", "IN", 12.9716, 77.5946, false},

	{"Dubai", "AE", 25.2048, 55.2708, true},
	{"Abu Dhabi", "AE", 24.4539, 54.3773, false},
}

func (e entry) city() models.City {
	return models.City{
		Name:        e.name,
		Country:     e.country,
		CountryName: countryNames[e.country],
		Coord:       models.Coordinates{Lat: e.lat, Lon: e.lon},
		Popular:     e.popular,
	}
}
