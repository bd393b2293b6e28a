package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/chaitu2303/FoodChain/models"
	"github.com/chaitu2303/FoodChain/storage"
	"github.com/chaitu2303/FoodChain/utils"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"github.com/kataras/iris/v12"
	jsonWT "github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/crypto/bcrypt"
)

func Register(ctx iris.Context) {
	var userInput RegisterUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !models.SelfServiceRole(userInput.Role) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Role must be one of donor, ngo, volunteer.", ctx)
		return
	}

	var newUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&newUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if userExists {
		utils.CreateEmailAlreadyRegistered(ctx)
		return
	}

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	newUser = models.User{
		Email:       strings.ToLower(userInput.Email),
		PhoneNumber: utils.NormalizePhoneNumber(userInput.Phone),
		Password:    hashedPassword,
		SignupRole:  userInput.Role,
		SocialLogin: false}

	storage.DB.Create(&newUser)

	materializeSignup(&newUser, userInput.FullName, userInput.Phone, userInput.Location, userInput.Role)

	returnUser(newUser, ctx)
}

func Login(ctx iris.Context) {
	var userInput LoginUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var existingUser models.User
	userExists, userExistsErr := getAndHandleUserExists(&existingUser, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Invalid email or password.", ctx)
		return
	}

	if existingUser.SocialLogin {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Social login account. Sign in with "+existingUser.SocialProvider+".", ctx)
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(existingUser.Password), []byte(userInput.Password))
	if passwordErr != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "Invalid email or password.", ctx)
		return
	}

	returnUser(existingUser, ctx)
}

// RequestPhoneOTP is phase one of phone sign-in: issue a short-lived code.
// Optional signup metadata rides along on the OTP row so the verify phase
// can create the account.
func RequestPhoneOTP(ctx iris.Context) {
	var userInput PhoneOTPRequestInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !utils.ValidatePhoneNumber(userInput.Phone) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid phone number format.", ctx)
		return
	}

	phone := utils.NormalizePhoneNumber(userInput.Phone)

	// Throttle resends per phone
	throttleKey := "otp_throttle:" + phone
	if set, _ := storage.Redis.SetNX(ctx.Request().Context(), throttleKey, "1", 60*time.Second).Result(); !set {
		utils.CreateError(iris.StatusTooManyRequests, "Rate Limit", "A code was sent recently. Try again in a minute.", ctx)
		return
	}

	purpose := models.OTPPurposeLogin
	var metadata string
	if userInput.Metadata != nil {
		if raw, err := json.Marshal(userInput.Metadata); err == nil {
			metadata = string(raw)
			purpose = models.OTPPurposeSignup
		}
	}

	otp := models.PhoneOTP{
		Phone:     phone,
		Code:      utils.GenerateOTP(6),
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(5 * time.Minute),
		Metadata:  metadata,
	}
	if err := storage.DB.Create(&otp).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// SMS dispatch is handled by the gateway worker; log for development.
	log.Printf("phone otp: code issued for %s (expires %s)", utils.DisplayPhoneNumber(phone), otp.ExpiresAt.Format(time.RFC3339))

	ctx.JSON(iris.Map{"success": true, "message": "Verification code sent."})
}

// VerifyPhoneOTP is phase two: exchange phone+code for a session, creating
// the account from the metadata captured in phase one when needed.
func VerifyPhoneOTP(ctx iris.Context) {
	var userInput PhoneOTPVerifyInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	phone := utils.NormalizePhoneNumber(userInput.Phone)

	var otp models.PhoneOTP
	if err := storage.DB.Where("phone = ? AND is_used = ?", phone, false).
		Order("created_at DESC").First(&otp).Error; err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Verification Error", "No pending code for this phone.", ctx)
		return
	}

	if !otp.Usable(time.Now()) {
		utils.CreateError(iris.StatusUnauthorized, "Verification Error", "Code expired. Request a new one.", ctx)
		return
	}

	if otp.Code != userInput.Code {
		storage.DB.Model(&otp).Update("attempts", otp.Attempts+1)
		utils.CreateError(iris.StatusUnauthorized, "Verification Error", "Incorrect code.", ctx)
		return
	}

	now := time.Now()
	storage.DB.Model(&otp).Updates(map[string]interface{}{"is_used": true, "verified_at": now})

	var user models.User
	userExists, userExistsErr := getAndHandleUserExistsByPhone(&user, phone)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		var meta struct {
			FullName string `json:"full_name"`
			Location string `json:"location"`
			Role     string `json:"role"`
		}
		if otp.Metadata != "" {
			json.Unmarshal([]byte(otp.Metadata), &meta)
		}
		if !models.SelfServiceRole(meta.Role) {
			meta.Role = models.RoleDonor
		}

		user = models.User{
			PhoneNumber: phone,
			SignupRole:  meta.Role,
		}
		storage.DB.Create(&user)
		materializeSignup(&user, meta.FullName, phone, meta.Location, meta.Role)
	}

	returnUser(user, ctx)
}

func GoogleLoginOrSignUp(ctx iris.Context) {
	var userInput SocialUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	endpoint := "https://www.googleapis.com/userinfo/v2/me"

	client := &http.Client{}
	req, _ := http.NewRequest("GET", endpoint, nil)
	header := "Bearer " + userInput.AccessToken
	req.Header.Set("Authorization", header)
	res, googleErr := client.Do(req)
	if googleErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	defer res.Body.Close()
	body, bodyErr := io.ReadAll(res.Body)
	if bodyErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var googleBody GoogleUserRes
	json.Unmarshal(body, &googleBody)

	if googleBody.Email == "" {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Invalid user token.", ctx)
		return
	}

	socialLoginOrSignUp(googleBody.Email, googleBody.GivenName+" "+googleBody.FamilyName, "Google", userInput.Role, ctx)
}

func AppleLoginOrSignUp(ctx iris.Context) {
	var userInput AppleUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	res, httpErr := http.Get("https://appleid.apple.com/auth/keys")
	if httpErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	defer res.Body.Close()

	body, bodyErr := io.ReadAll(res.Body)
	if bodyErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	jwks, jwksErr := keyfunc.NewJSON(body)
	if jwksErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// The JWKS.Keyfunc method selects the key with the matching kid and
	// returns its public key as the correct Go type.
	token, tokenErr := jwt.Parse(userInput.IdentityToken, jwks.Keyfunc)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !token.Valid {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Invalid user token.", ctx)
		return
	}

	email := fmt.Sprint(token.Claims.(jwt.MapClaims)["email"])
	if email == "" {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "Invalid user token.", ctx)
		return
	}

	socialLoginOrSignUp(email, "", "Apple", userInput.Role, ctx)
}

func socialLoginOrSignUp(email, fullName, provider, role string, ctx iris.Context) {
	var user models.User
	userExists, userExistsErr := getAndHandleUserExists(&user, email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if !userExists {
		if !models.SelfServiceRole(role) {
			role = models.RoleDonor
		}
		user = models.User{Email: strings.ToLower(email), SocialLogin: true, SocialProvider: provider, SignupRole: role}
		storage.DB.Create(&user)
		materializeSignup(&user, fullName, "", "", role)

		returnUser(user, ctx)
		return
	}

	if user.SocialLogin && user.SocialProvider == provider {
		returnUser(user, ctx)
		return
	}

	utils.CreateEmailAlreadyRegistered(ctx)
}

func ForgotPassword(ctx iris.Context) {
	var userInput EmailInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	userExists, userExistsErr := getAndHandleUserExists(&user, userInput.Email)
	if userExistsErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Do not reveal whether the email exists
	if !userExists || user.SocialLogin {
		ctx.JSON(iris.Map{"success": true, "message": "If the account exists, a reset link was sent."})
		return
	}

	resetToken, tokenErr := utils.CreateForgotPasswordToken(user.ID, user.Email)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Email dispatch is handled by the mailer worker; log for development.
	log.Printf("password reset: token issued for user %d: %s", user.ID, resetToken)

	ctx.JSON(iris.Map{"success": true, "message": "If the account exists, a reset link was sent."})
}

func ResetPassword(ctx iris.Context) {
	var userInput ResetPasswordInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jsonWT.Get(ctx).(*utils.ForgotPasswordToken)

	hashedPassword, hashErr := hashAndSaltPassword(userInput.Password)
	if hashErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if err := storage.DB.Model(&models.User{}).Where("id = ?", claims.ID).
		Update("password", hashedPassword).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Password updated."})
}

// GetMe returns the session view: user, profile, resolved role and the
// derived isVerified/isApproved flags.
func GetMe(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var profile models.UserProfile
	profileErr := storage.DB.Where("user_id = ?", userID).First(&profile).Error

	var assignment models.RoleAssignment
	var assignmentPtr *models.RoleAssignment
	if err := storage.DB.Where("user_id = ?", userID).First(&assignment).Error; err == nil {
		assignmentPtr = &assignment
	}

	role, fallback := models.ResolveRole(&user, assignmentPtr)
	if fallback {
		utils.LogRoleFallback(userID, role)
	}

	response := iris.Map{
		"user":       &user,
		"role":       role,
		"isApproved": models.IsApproved(role, assignment.Approved),
		"isVerified": false,
	}
	if profileErr == nil {
		response["profile"] = &profile
		response["isVerified"] = profile.IsVerified
	}

	ctx.JSON(response)
}

// UpdateProfile handles the settings surface: display fields and avatar.
func UpdateProfile(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input UpdateProfileInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var profile models.UserProfile
	if err := storage.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		profile = models.UserProfile{UserID: userID}
	}

	if input.FullName != "" {
		profile.FullName = input.FullName
	}
	if input.Phone != "" {
		profile.Phone = utils.NormalizePhoneNumber(input.Phone)
	}
	if input.Location != "" {
		profile.Location = input.Location
	}
	if input.AvatarBase64 != "" {
		uploaded := storage.UploadBase64Image(input.AvatarBase64, fmt.Sprintf("avatar_%d", userID))
		if uploaded["url"] != "" {
			profile.AvatarURL = uploaded["url"]
		}
	}

	if err := storage.DB.Save(&profile).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"data": &profile})
}

// AlterPushToken registers or removes an Expo push token for the user.
func AlterPushToken(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input PushTokenInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}

	var tokens []string
	if user.PushTokens != nil {
		json.Unmarshal(user.PushTokens, &tokens)
	}

	switch input.Op {
	case "add":
		exists := false
		for _, t := range tokens {
			if t == input.Token {
				exists = true
				break
			}
		}
		if !exists {
			tokens = append(tokens, input.Token)
		}
	case "remove":
		filtered := tokens[:0]
		for _, t := range tokens {
			if t != input.Token {
				filtered = append(filtered, t)
			}
		}
		tokens = filtered
	default:
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "op must be add or remove.", ctx)
		return
	}

	raw, _ := json.Marshal(tokens)
	if err := storage.DB.Model(&user).Update("push_tokens", raw).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true})
}

// materializeSignup creates the profile, role assignment and role-specific
// rows that the signup metadata describes. Mirrors what a database trigger
// would do; tolerating its absence is why role resolution keeps a fallback.
func materializeSignup(user *models.User, fullName, phone, location, role string) {
	profile := models.UserProfile{
		UserID:   user.ID,
		FullName: fullName,
		Phone:    utils.NormalizePhoneNumber(phone),
		Location: location,
	}
	if err := storage.DB.Create(&profile).Error; err != nil {
		log.Printf("signup: failed to create profile for user %d: %v", user.ID, err)
	}

	assignment := models.RoleAssignment{
		UserID:   user.ID,
		Role:     role,
		Approved: false,
	}
	if err := storage.DB.Create(&assignment).Error; err != nil {
		log.Printf("signup: failed to create role assignment for user %d: %v", user.ID, err)
	}

	if role == models.RoleVolunteer {
		volunteer := models.Volunteer{UserID: user.ID}
		if err := storage.DB.Create(&volunteer).Error; err != nil {
			log.Printf("signup: failed to create volunteer row for user %d: %v", user.ID, err)
		}
	}
}

func getAndHandleUserExists(user *models.User, email string) (exists bool, err error) {
	userExistsQuery := storage.DB.Where("email = ?", strings.ToLower(email)).Limit(1).Find(&user)

	if userExistsQuery.Error != nil {
		return false, userExistsQuery.Error
	}

	exists = userExistsQuery.RowsAffected > 0

	if exists {
		return true, nil
	}

	return false, nil
}

func getAndHandleUserExistsByPhone(user *models.User, phoneNumber string) (exists bool, err error) {
	formattedPhone := utils.NormalizePhoneNumber(phoneNumber)
	userExistsQuery := storage.DB.Where("phone_number = ?", formattedPhone).Limit(1).Find(&user)

	if userExistsQuery.Error != nil {
		return false, userExistsQuery.Error
	}

	return userExistsQuery.RowsAffected > 0, nil
}

func hashAndSaltPassword(password string) (hashedPassword string, err error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

func returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenErr := utils.CreateTokenPair(user.ID)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var assignment models.RoleAssignment
	var assignmentPtr *models.RoleAssignment
	if err := storage.DB.Where("user_id = ?", user.ID).First(&assignment).Error; err == nil {
		assignmentPtr = &assignment
	}
	role, _ := models.ResolveRole(&user, assignmentPtr)

	ctx.JSON(iris.Map{
		"ID":           user.ID,
		"email":        user.Email,
		"phoneNumber":  user.PhoneNumber,
		"role":         role,
		"approved":     models.IsApproved(role, assignment.Approved),
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}

type RegisterUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=256"`
	FullName string `json:"fullName" validate:"required,max=100"`
	Phone    string `json:"phone"`
	Location string `json:"location" validate:"max=200"`
	Role     string `json:"role" validate:"required"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type PhoneOTPRequestInput struct {
	Phone    string                 `json:"phone" validate:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

type PhoneOTPVerifyInput struct {
	Phone string `json:"phone" validate:"required"`
	Code  string `json:"code" validate:"required,min=4,max=6"`
}

type SocialUserInput struct {
	AccessToken string `json:"accessToken" validate:"required"`
	Role        string `json:"role"`
}

type AppleUserInput struct {
	IdentityToken string `json:"identityToken" validate:"required"`
	Role          string `json:"role"`
}

type GoogleUserRes struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

type EmailInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	Password string `json:"password" validate:"required,min=8,max=256"`
}

type UpdateProfileInput struct {
	FullName     string `json:"fullName" validate:"max=100"`
	Phone        string `json:"phone"`
	Location     string `json:"location" validate:"max=200"`
	AvatarBase64 string `json:"avatarBase64"`
}

type PushTokenInput struct {
	Token string `json:"token" validate:"required"`
	Op    string `json:"op" validate:"required"`
}
