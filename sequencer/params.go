package sequencer

import "strings"

// Machinedrum kit dimensions
const (
	NumTracks = 16
	NumParams = 24
)

// Machinedrum track parameter slots
const (
	ParamP1 = iota
	ParamP2
	ParamP3
	ParamP4
	ParamP5
	ParamP6
	ParamP7
	ParamP8
	ParamAMD
	ParamAMF
	ParamEQF
	ParamEQG
	ParamFLTF
	ParamFLTW
	ParamFLTQ
	ParamSRR
	ParamDIST
	ParamVOL
	ParamPAN
	ParamDEL
	ParamREV
	ParamLFOS
	ParamLFOD
	ParamLFOM
)

var paramNames = [NumParams]string{
	"P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8",
	"AMD", "AMF", "EQF", "EQG", "FLTF", "FLTW", "FLTQ", "SRR",
	"DIST", "VOL", "PAN", "DEL", "REV", "LFOS", "LFOD", "LFOM",
}

// ParamName returns the short name of a parameter slot.
func ParamName(i int) string {
	if i < 0 || i >= NumParams {
		return "?"
	}
	return paramNames[i]
}

// Params holds the 24 parameter values of one track.
type Params [NumParams]uint8

// Kit holds the parameters of all 16 tracks.
type Kit struct {
	Name   string
	Tracks [NumTracks]Params
}

// NewKit creates a kit with every parameter centered.
func NewKit(name string) *Kit {
	k := &Kit{Name: name}
	for t := range k.Tracks {
		for p := range k.Tracks[t] {
			k.Tracks[t][p] = 64
		}
	}
	return k
}

// ParamMask selects parameter slots, bit i for slot i.
type ParamMask uint32

// Has reports whether slot i is selected.
func (m ParamMask) Has(i int) bool {
	return m&(1<<uint(i)) != 0
}

func bits(slots ...int) ParamMask {
	var m ParamMask
	for _, s := range slots {
		m |= 1 << uint(s)
	}
	return m
}

// Category masks
const (
	SelectFilter = iota
	SelectAMD
	SelectEQ
	SelectEffect
	SelectLowSyn
	SelectUpSyn
	SelectSyn
	SelectLFO
	SelectSends
	SelectDist
	SelectFXLowSyn
	SelectFXSyn
	SelectAll
	NumSelects
)

var (
	maskFilter = bits(ParamFLTF, ParamFLTW, ParamFLTQ)
	maskAMD    = bits(ParamAMD, ParamAMF)
	maskEQ     = bits(ParamEQF, ParamEQG)
	maskEffect = maskAMD | maskEQ | maskFilter
	maskLowSyn = bits(ParamP5, ParamP6, ParamP7, ParamP8)
	maskUpSyn  = bits(ParamP2, ParamP3, ParamP4)
	maskSyn    = maskUpSyn | maskLowSyn
)

var selectMasks = [NumSelects]ParamMask{
	SelectFilter:   maskFilter,
	SelectAMD:      maskAMD,
	SelectEQ:       maskEQ,
	SelectEffect:   maskEffect,
	SelectLowSyn:   maskLowSyn,
	SelectUpSyn:    maskUpSyn,
	SelectSyn:      maskSyn,
	SelectLFO:      bits(ParamLFOS, ParamLFOD, ParamLFOM),
	SelectSends:    bits(ParamDEL, ParamREV),
	SelectDist:     bits(ParamSRR, ParamDIST),
	SelectFXLowSyn: maskEffect | maskLowSyn,
	SelectFXSyn:    maskEffect | maskSyn,
	SelectAll:      1<<NumParams - 1,
}

var selectNames = [NumSelects]string{
	"FILTER", "AMD", "EQ", "EFFECT", "LOWSYN", "UPSYN", "SYN",
	"LFO", "SENDS", "DIST", "FXLOW", "FXSYN", "ALL",
}

// SelectMask returns the mask of a category and whether the category exists.
func SelectMask(i int) (ParamMask, bool) {
	if i < 0 || i >= NumSelects {
		return 0, false
	}
	return selectMasks[i], true
}

// SelectName returns the name of a category.
func SelectName(i int) string {
	if i < 0 || i >= NumSelects {
		return "?"
	}
	return selectNames[i]
}

// ParseSelect looks a category up by name, case-insensitively.
func ParseSelect(name string) (int, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range selectNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// SelectNames lists the categories in index order.
func SelectNames() []string {
	return append([]string(nil), selectNames[:]...)
}
