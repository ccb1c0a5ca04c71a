package rooms

// Zone этаж или группа аудиторий на табло
type Zone struct {
	Key   string
	Label string
	Rooms []string
}

// Layout фиксированный набор канонических аудиторий по зонам в порядке отображения
var Layout = []Zone{
	{Key: "rdc", Label: "Rez-de-chaussée", Rooms: []string{"R46", "R52", "R51", "R50"}},
	{Key: "roof1", Label: "1er Étage", Rooms: []string{"103", "104", "105", "112", "111", "110", "109", "108"}},
	{Key: "roof2", Label: "2ème Étage", Rooms: []string{"205", "206", "209", "208"}},
	{Key: "theaters", Label: "Amphithéâtres", Rooms: []string{"AA", "AB", "AC"}},
}

var canonical = func() map[string]bool {
	set := make(map[string]bool)
	for _, zone := range Layout {
		for _, room := range zone.Rooms {
			set[room] = true
		}
	}
	return set
}()

// CanonicalRooms возвращает все аудитории табло в порядке отображения
func CanonicalRooms() []string {
	var out []string
	for _, zone := range Layout {
		out = append(out, zone.Rooms...)
	}
	return out
}

func IsCanonical(room string) bool {
	return canonical[room]
}

// ZoneByKey ищет зону по ключу
func ZoneByKey(key string) (Zone, bool) {
	for _, zone := range Layout {
		if zone.Key == key {
			return zone, true
		}
	}
	return Zone{}, false
}
