// package player keeps the play queue and drives an external audio player.
//
// The queue tracks shuffle and repeat state. The [Player] starts songs through a [Backend] and writes each started
// song to the listening history.
package player
