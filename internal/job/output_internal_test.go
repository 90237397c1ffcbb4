package job

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func lines(prefix string, n int) []string {
	ret := make([]string, n)
	for i := range ret {
		ret[i] = prefix + string(rune('a'+i))
	}
	return ret
}

func TestTrimSelect(t *testing.T) {
	t.Parallel()
	var testCases = []struct {
		scenario   string
		errs       []string
		output     []string
		then       []string
		fromErrors bool
	}{
		{"both empty", nil, nil, nil, false},
		{"errors drop last two", lines("e", 4), lines("o", 20), lines("e", 2), true},
		{"single error", lines("e", 1), nil, []string{}, true},
		{"two errors", lines("e", 2), nil, []string{}, true},
		{"output window", nil, lines("o", 12), lines("o", 9)[6:9], false},
		{"output of ten lines", nil, lines("o", 10), []string{"og"}, false},
		{"output of nine lines", nil, lines("o", 9), nil, false},
		{"hello world", nil, []string{"Hello"}, nil, false},
	}

	for _, tt := range testCases {
		t.Run(tt.scenario, func(t *testing.T) {
			got, fromErrors := DefaultTrim.Select(tt.errs, tt.output)
			require.Equal(t, tt.fromErrors, fromErrors)
			if len(tt.then) == 0 {
				require.Empty(t, got)
				return
			}
			require.Equal(t, tt.then, got)
		})
	}
}

func TestTrimSelect_Properties(t *testing.T) {
	t.Parallel()
	for n := 3; n < 30; n++ {
		errs := lines("e", n)
		got, _ := DefaultTrim.Select(errs, nil)
		require.Equal(t, errs[0], got[0])
		require.Len(t, got, n-2)
	}
	for n := 10; n < 30; n++ {
		output := lines("o", n)
		got, _ := DefaultTrim.Select(nil, output)
		require.Equal(t, output[6], got[0])
		require.Equal(t, output[n-4], got[len(got)-1])
	}
}

func TestTrimSelect_Zero(t *testing.T) {
	t.Parallel()
	got, _ := Trim{}.Select(nil, []string{"Hello"})
	require.Equal(t, []string{"Hello"}, got)
	got, _ = Trim{}.Select([]string{"x"}, []string{"Hello"})
	require.Equal(t, []string{"x"}, got)
}

func TestToASCII(t *testing.T) {
	t.Parallel()
	require.Equal(t, "plain", toASCII("plain"))
	require.Equal(t, "na?ve ?", toASCII("naïve €"))
	require.Equal(t, "a?b", toASCII("a\xffb"))
}

func TestCommandLines(t *testing.T) {
	t.Parallel()
	require.Equal(t,
		"gcc /j/bad.c -Wall -o /j/temp.exe",
		compileLine("gcc", "/j/bad.c", "-Wall", "/j/temp.exe"),
	)
	require.Equal(t,
		"g++ /j/a.cpp  -o /j/temp.exe",
		compileLine("g++", "/j/a.cpp", "", "/j/temp.exe"),
	)
	require.Equal(t,
		"/j/temp.exe 1 2 < /j/input.txt",
		runLine("/j/temp.exe", "1 2", "/j/input.txt"),
	)
}

func TestCommandArgv(t *testing.T) {
	t.Setenv("WINC_TEST_STD", "c++17")

	argv, err := compileArgv("g++", "/j/a.cpp", `-O2 -std=$WINC_TEST_STD -DNAME="a b"`, "/j/temp.exe")
	require.NoError(t, err)
	require.Equal(t, []string{"g++", "/j/a.cpp", "-O2", "-std=c++17", "-DNAME=a b", "-o", "/j/temp.exe"}, argv)

	argv, err = compileArgv("gcc", "/j/a.c", "  ", "/j/temp.exe")
	require.NoError(t, err)
	require.Equal(t, []string{"gcc", "/j/a.c", "-o", "/j/temp.exe"}, argv)

	argv, err = runArgv("/j/temp.exe", "")
	require.NoError(t, err)
	require.Equal(t, []string{"/j/temp.exe"}, argv)

	_, err = runArgv("/j/temp.exe", `"unterminated`)
	require.Error(t, err)
}
