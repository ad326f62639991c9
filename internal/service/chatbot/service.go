// Package chatbot answers common questions with canned replies.
package chatbot

import (
	"strings"
)

const fallback = "I'm sorry, I didn't understand that. You can ask about booking, " +
	"cancelling, payments, prescriptions, video calls or finding a doctor."

type rule struct {
	keywords []string
	reply    string
}

var rules = []rule{
	{[]string{"emergency", "chest pain", "can't breathe", "cannot breathe", "unconscious"},
		"If this is a medical emergency, call your local emergency number right away."},
	{[]string{"hello", "hi ", "hey"},
		"Hello! I'm the MedConnect assistant. How can I help you today?"},
	{[]string{"book", "appointment", "schedule"},
		"To book an appointment, open a doctor's profile, choose a date and one of the free time slots, then confirm."},
	{[]string{"cancel"},
		"You can cancel an appointment from My Appointments up to one hour before it starts. Paid appointments are refunded."},
	{[]string{"pay", "payment", "fee", "refund"},
		"Pay from My Appointments once your booking is made. Cancelled paid appointments are refunded automatically."},
	{[]string{"prescription", "medicine", "medication"},
		"Prescriptions written by your doctor appear under Prescriptions, where you can also download them as PDF."},
	{[]string{"video", "call", "online consultation"},
		"Join the video call from the appointment page at the scheduled time. Both you and the doctor need to be online."},
	{[]string{"doctor", "specialist", "specialization"},
		"Browse All Doctors and filter by specialization to find the right specialist."},
	{[]string{"reminder"},
		"Set medicine reminders from the Reminders page."},
	{[]string{"password", "login", "sign in"},
		"Use Forgot Password on the login page to receive a reset code by email."},
	{[]string{"thank"},
		"You're welcome! Take care."},
}

// Reply returns the first canned answer whose keyword occurs in message.
func Reply(message string) string {
	msg := " " + strings.ToLower(strings.TrimSpace(message)) + " "
	for _, r := range rules {
		for _, k := range r.keywords {
			if strings.Contains(msg, k) {
				return r.reply
			}
		}
	}
	return fallback
}
