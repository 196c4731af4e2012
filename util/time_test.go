package util

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ExampleStamp() {
	t := time.Date(2024, 3, 7, 9, 5, 2, 0, time.UTC)
	fmt.Println(Stamp(t))
	// Output:
	// 07032024-090502
}

func TestEvery(t *testing.T) {
	e := &Every{Interval: 10 * time.Minute}
	now := time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)
	assert.True(t, e.Due(now))
	assert.False(t, e.Due(now.Add(time.Minute)))
	assert.False(t, e.Due(now.Add(9*time.Minute)))
	assert.True(t, e.Due(now.Add(10*time.Minute)))
	assert.False(t, e.Due(now.Add(15*time.Minute)))
}

func ExampleShortDuration() {
	d1, _ := time.ParseDuration("48h")
	d2, _ := time.ParseDuration("26.5h")
	d3, _ := time.ParseDuration("5h59m")
	d4, _ := time.ParseDuration("37m1s")
	d5, _ := time.ParseDuration("1500ms")
	d6, _ := time.ParseDuration("500ms")
	d7, _ := time.ParseDuration("500ns")

	fmt.Println(ShortDuration(d1))
	fmt.Println(ShortDuration(d2))
	fmt.Println(ShortDuration(d3))
	fmt.Println(ShortDuration(d4))
	fmt.Println(ShortDuration(d5))
	fmt.Println(ShortDuration(d6))
	fmt.Println(ShortDuration(d7))
	// Output:
	// 2d
	// 1d 2h
	// 5h 59m
	// 37m 1s
	// 1s
	// 500ms
	// 0s
}
