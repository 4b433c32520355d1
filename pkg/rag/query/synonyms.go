package query

import "strings"

// MaxSynonymGroups bounds how many synonym groups a single query may pull in.
const MaxSynonymGroups = 4

// defaultSynonymGroups are disjoint sets of equivalent phrases. No member of one
// group may contain a member of another group, which keeps expansion idempotent.
var defaultSynonymGroups = [][]string{
	{"dano moral", "danos morais", "indenização por dano moral"},
	{"stj", "superior tribunal de justiça"},
	{"stf", "supremo tribunal federal"},
	{"tst", "tribunal superior do trabalho"},
	{"usucapião", "prescrição aquisitiva"},
	{"pensão alimentícia", "alimentos"},
	{"horas extras", "horas extraordinárias", "sobrejornada"},
	{"habeas corpus", "hc"},
	{"recuperação judicial", "recuperação de empresas"},
	{"plano de saúde", "operadora de saúde", "seguro saúde"},
	{"despejo", "ação de despejo"},
	{"cdc", "código de defesa do consumidor"},
	{"rescisão indireta", "justa causa do empregador"},
}

// SynonymTable expands normalized query text with equivalent legal phrasing.
type SynonymTable struct {
	groups    [][]string
	maxGroups int
}

func NewSynonymTable() *SynonymTable {
	return &SynonymTable{groups: defaultSynonymGroups, maxGroups: MaxSynonymGroups}
}

func NewSynonymTableWithGroups(groups [][]string, maxGroups int) *SynonymTable {
	return &SynonymTable{groups: groups, maxGroups: maxGroups}
}

// Expand appends the missing members of every triggered group, up to maxGroups
// groups in table order. The selected groups depend only on which groups have a
// member present, so re-expanding the output adds nothing.
func (s *SynonymTable) Expand(text string) (string, []string) {
	var added []string
	triggered := 0

	for _, group := range s.groups {
		if triggered >= s.maxGroups {
			break
		}
		present := false
		for _, term := range group {
			if containsPhrase(text, term) {
				present = true
				break
			}
		}
		if !present {
			continue
		}
		triggered++
		for _, term := range group {
			if !containsPhrase(text, term) && !contains(added, term) {
				added = append(added, term)
			}
		}
	}

	if len(added) == 0 {
		return text, nil
	}
	return text + " " + strings.Join(added, " "), added
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
