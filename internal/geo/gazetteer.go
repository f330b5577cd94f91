package geo

import "strings"

type place struct {
	name string
	lat  float64
	lng  float64
}

// countryGazetteer maps lowercase country names to their capital's
// coordinates. Alias entries (usa, uk, uae, ...) point at the same places.
var countryGazetteer = map[string]place{
	"afghanistan":    {"Afghanistan", 34.5553, 69.2075},
	"argentina":      {"Argentina", -34.6037, -58.3816},
	"australia":      {"Australia", -35.2809, 149.1300},
	"bangladesh":     {"Bangladesh", 23.8103, 90.4125},
	"belgium":        {"Belgium", 50.8503, 4.3517},
	"brazil":         {"Brazil", -15.8267, -47.9218},
	"canada":         {"Canada", 45.4215, -75.6972},
	"chile":          {"Chile", -33.4489, -70.6693},
	"china":          {"China", 39.9042, 116.4074},
	"colombia":       {"Colombia", 4.7110, -74.0721},
	"egypt":          {"Egypt", 30.0444, 31.2357},
	"ethiopia":       {"Ethiopia", 9.0320, 38.7469},
	"france":         {"France", 48.8566, 2.3522},
	"germany":        {"Germany", 52.5200, 13.4050},
	"greece":         {"Greece", 37.9838, 23.7275},
	"haiti":          {"Haiti", 18.5944, -72.3074},
	"india":          {"India", 28.6139, 77.2090},
	"indonesia":      {"Indonesia", -6.2088, 106.8456},
	"iran":           {"Iran", 35.6892, 51.3890},
	"iraq":           {"Iraq", 33.3152, 44.3661},
	"israel":         {"Israel", 31.7683, 35.2137},
	"italy":          {"Italy", 41.9028, 12.4964},
	"japan":          {"Japan", 35.6762, 139.6503},
	"kenya":          {"Kenya", -1.2921, 36.8219},
	"lebanon":        {"Lebanon", 33.8938, 35.5018},
	"mexico":         {"Mexico", 19.4326, -99.1332},
	"myanmar":        {"Myanmar", 19.7633, 96.0785},
	"nigeria":        {"Nigeria", 9.0765, 7.3986},
	"north korea":    {"North Korea", 39.0392, 125.7625},
	"pakistan":       {"Pakistan", 33.6844, 73.0479},
	"philippines":    {"Philippines", 14.5995, 120.9842},
	"poland":         {"Poland", 52.2297, 21.0122},
	"russia":         {"Russia", 55.7558, 37.6173},
	"saudi arabia":   {"Saudi Arabia", 24.7136, 46.6753},
	"somalia":        {"Somalia", 2.0469, 45.3182},
	"south africa":   {"South Africa", -25.7479, 28.2293},
	"south korea":    {"South Korea", 37.5665, 126.9780},
	"spain":          {"Spain", 40.4168, -3.7038},
	"sudan":          {"Sudan", 15.5007, 32.5599},
	"syria":          {"Syria", 33.5138, 36.2765},
	"taiwan":         {"Taiwan", 25.0330, 121.5654},
	"thailand":       {"Thailand", 13.7563, 100.5018},
	"turkey":         {"Turkey", 39.9334, 32.8597},
	"ukraine":        {"Ukraine", 50.4501, 30.5234},
	"united kingdom": {"United Kingdom", 51.5074, -0.1278},
	"united states":  {"United States", 38.9072, -77.0369},
	"venezuela":      {"Venezuela", 10.4806, -66.9036},
	"vietnam":        {"Vietnam", 21.0285, 105.8542},
	"yemen":          {"Yemen", 15.3694, 44.1910},
}

// countryAliases maps common short forms to gazetteer keys.
var countryAliases = map[string]string{
	"america": "united states",
	"britain": "united kingdom",
	"uk":      "united kingdom",
	"us":      "united states",
	"usa":     "united states",
}

// cityGazetteer covers major cities that show up in headlines far more
// often than their country name does.
var cityGazetteer = map[string]place{
	"baghdad":        {"Baghdad", 33.3152, 44.3661},
	"bangkok":        {"Bangkok", 13.7563, 100.5018},
	"beijing":        {"Beijing", 39.9042, 116.4074},
	"beirut":         {"Beirut", 33.8938, 35.5018},
	"berlin":         {"Berlin", 52.5200, 13.4050},
	"brussels":       {"Brussels", 50.8503, 4.3517},
	"buenos aires":   {"Buenos Aires", -34.6037, -58.3816},
	"cairo":          {"Cairo", 30.0444, 31.2357},
	"caracas":        {"Caracas", 10.4806, -66.9036},
	"damascus":       {"Damascus", 33.5138, 36.2765},
	"delhi":          {"Delhi", 28.6139, 77.2090},
	"dhaka":          {"Dhaka", 23.8103, 90.4125},
	"gaza":           {"Gaza", 31.5017, 34.4668},
	"hong kong":      {"Hong Kong", 22.3193, 114.1694},
	"istanbul":       {"Istanbul", 41.0082, 28.9784},
	"jakarta":        {"Jakarta", -6.2088, 106.8456},
	"jerusalem":      {"Jerusalem", 31.7683, 35.2137},
	"kabul":          {"Kabul", 34.5553, 69.2075},
	"kyiv":           {"Kyiv", 50.4501, 30.5234},
	"lagos":          {"Lagos", 6.5244, 3.3792},
	"london":         {"London", 51.5074, -0.1278},
	"los angeles":    {"Los Angeles", 34.0522, -118.2437},
	"madrid":         {"Madrid", 40.4168, -3.7038},
	"manila":         {"Manila", 14.5995, 120.9842},
	"mexico city":    {"Mexico City", 19.4326, -99.1332},
	"moscow":         {"Moscow", 55.7558, 37.6173},
	"mumbai":         {"Mumbai", 19.0760, 72.8777},
	"nairobi":        {"Nairobi", -1.2921, 36.8219},
	"new york":       {"New York", 40.7128, -74.0060},
	"paris":          {"Paris", 48.8566, 2.3522},
	"rome":           {"Rome", 41.9028, 12.4964},
	"san francisco":  {"San Francisco", 37.7749, -122.4194},
	"seoul":          {"Seoul", 37.5665, 126.9780},
	"shanghai":       {"Shanghai", 31.2304, 121.4737},
	"singapore":      {"Singapore", 1.3521, 103.8198},
	"sydney":         {"Sydney", -33.8688, 151.2093},
	"taipei":         {"Taipei", 25.0330, 121.5654},
	"tehran":         {"Tehran", 35.6892, 51.3890},
	"tel aviv":       {"Tel Aviv", 32.0853, 34.7818},
	"tokyo":          {"Tokyo", 35.6762, 139.6503},
	"warsaw":         {"Warsaw", 52.2297, 21.0122},
	"washington":     {"Washington", 38.9072, -77.0369},
}

// orgGazetteer maps organization names to a bounded subset of member
// countries. Lookups return at most maxOrgMembers locations.
var orgGazetteer = map[string][]string{
	"african union":  {"ethiopia", "nigeria", "south africa"},
	"asean":          {"indonesia", "thailand", "vietnam"},
	"european union": {"belgium", "france", "germany"},
	"nato":           {"belgium", "united states", "germany"},
	"opec":           {"saudi arabia", "iran", "venezuela"},
}

const maxOrgMembers = 3

// lookupPlace resolves a name against the city, country, and alias tables.
func lookupPlace(name string) (place, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return place{}, false
	}
	if p, ok := cityGazetteer[key]; ok {
		return p, true
	}
	if alias, ok := countryAliases[key]; ok {
		key = alias
	}
	if p, ok := countryGazetteer[key]; ok {
		return p, true
	}
	return place{}, false
}
